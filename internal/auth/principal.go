package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

var (
	// ErrUnauthenticated covers every terminal "no usable principal"
	// outcome: missing or invalid token, kind mismatch, or a valid token
	// whose backing record no longer exists (stale tokens fail closed).
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrStoreUnavailable is surfaced after lookup retries exhaust. It is
	// deliberately distinct from ErrUnauthenticated: a store outage must
	// map to 503, not 401, or legitimate principals would appear
	// unauthenticated.
	ErrStoreUnavailable = errors.New("principal store unavailable")
)

// Principal is the resolved actor behind a request: exactly one of the
// three concrete records is set, matching Kind.
type Principal struct {
	Kind   types.PrincipalKind
	User   *types.User
	Mentor *types.Mentor
	School *types.School
}

// ID returns the id of the concrete record backing the principal.
func (p Principal) ID() int {
	switch p.Kind {
	case types.KindUser:
		return p.User.ID
	case types.KindMentor:
		return p.Mentor.ID
	case types.KindSchool:
		return p.School.ID
	}
	return 0
}

// IsAdmin reports whether the principal is an admin-flagged user. Admin
// is a user-only capability; mentors and schools never hold it.
func (p Principal) IsAdmin() bool {
	return p.Kind == types.KindUser && p.User.IsAdmin()
}

// PrincipalSource loads concrete principal records by id. Lookups must
// return store.ErrNotFound for absent records so the resolver can tell
// "gone" apart from "store down".
type PrincipalSource interface {
	UserByID(ctx context.Context, id int) (types.User, error)
	MentorByID(ctx context.Context, id int) (types.Mentor, error)
	SchoolByID(ctx context.Context, id int) (types.School, error)
}

const (
	defaultResolveAttempts = 4
	defaultResolveBackoff  = 50 * time.Millisecond
)

// Resolver maps a verified (id, kind) pair to a loaded Principal. It is
// the single place that dispatches the kind tag to a storage lookup.
type Resolver struct {
	src         PrincipalSource
	maxAttempts int
	backoff     time.Duration
}

// NewResolver constructs a Resolver over the given source.
func NewResolver(src PrincipalSource) *Resolver {
	return &Resolver{
		src:         src,
		maxAttempts: defaultResolveAttempts,
		backoff:     defaultResolveBackoff,
	}
}

// Resolve loads the principal record for a verified token. A missing
// record yields ErrUnauthenticated; transient store errors are retried
// with bounded exponential backoff before ErrStoreUnavailable.
func (r *Resolver) Resolve(ctx context.Context, id int, kind types.PrincipalKind) (Principal, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Principal{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, ctx.Err())
			case <-time.After(r.backoff << (attempt - 1)):
			}
		}

		principal, err := r.lookup(ctx, id, kind)
		if err == nil {
			return principal, nil
		}
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrUnauthenticated) {
			return Principal{}, ErrUnauthenticated
		}
		lastErr = err
	}
	return Principal{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, lastErr)
}

func (r *Resolver) lookup(ctx context.Context, id int, kind types.PrincipalKind) (Principal, error) {
	switch kind {
	case types.KindUser:
		user, err := r.src.UserByID(ctx, id)
		if err != nil {
			return Principal{}, err
		}
		return Principal{Kind: types.KindUser, User: &user}, nil
	case types.KindMentor:
		mentor, err := r.src.MentorByID(ctx, id)
		if err != nil {
			return Principal{}, err
		}
		return Principal{Kind: types.KindMentor, Mentor: &mentor}, nil
	case types.KindSchool:
		school, err := r.src.SchoolByID(ctx, id)
		if err != nil {
			return Principal{}, err
		}
		return Principal{Kind: types.KindSchool, School: &school}, nil
	default:
		// Unknown kinds cannot reach here through Verify; fail closed
		// anyway.
		return Principal{}, ErrUnauthenticated
	}
}
