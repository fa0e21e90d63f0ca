package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

type fakeSource struct {
	users   map[int]types.User
	mentors map[int]types.Mentor
	schools map[int]types.School

	failures int
	calls    int
}

func (f *fakeSource) fail() error {
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func (f *fakeSource) UserByID(_ context.Context, id int) (types.User, error) {
	f.calls++
	if err := f.fail(); err != nil {
		return types.User{}, err
	}
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeSource) MentorByID(_ context.Context, id int) (types.Mentor, error) {
	f.calls++
	if err := f.fail(); err != nil {
		return types.Mentor{}, err
	}
	mentor, ok := f.mentors[id]
	if !ok {
		return types.Mentor{}, store.ErrNotFound
	}
	return mentor, nil
}

func (f *fakeSource) SchoolByID(_ context.Context, id int) (types.School, error) {
	f.calls++
	if err := f.fail(); err != nil {
		return types.School{}, err
	}
	school, ok := f.schools[id]
	if !ok {
		return types.School{}, store.ErrNotFound
	}
	return school, nil
}

func newTestResolver(src PrincipalSource) *Resolver {
	resolver := NewResolver(src)
	resolver.backoff = time.Millisecond
	return resolver
}

func TestResolveDispatchesByKind(t *testing.T) {
	src := &fakeSource{
		users:   map[int]types.User{1: {ID: 1, Email: "u@example.com"}},
		mentors: map[int]types.Mentor{1: {ID: 1, Email: "m@example.com"}},
		schools: map[int]types.School{1: {ID: 1, Email: "s@example.com"}},
	}
	resolver := newTestResolver(src)

	user, err := resolver.Resolve(context.Background(), 1, types.KindUser)
	require.NoError(t, err)
	assert.Equal(t, types.KindUser, user.Kind)
	require.NotNil(t, user.User)
	assert.Equal(t, "u@example.com", user.User.Email)
	assert.Nil(t, user.Mentor)
	assert.Nil(t, user.School)

	mentor, err := resolver.Resolve(context.Background(), 1, types.KindMentor)
	require.NoError(t, err)
	assert.Equal(t, types.KindMentor, mentor.Kind)
	require.NotNil(t, mentor.Mentor)

	school, err := resolver.Resolve(context.Background(), 1, types.KindSchool)
	require.NoError(t, err)
	assert.Equal(t, types.KindSchool, school.Kind)
	require.NotNil(t, school.School)
}

func TestResolveFailsClosedOnMissingRecord(t *testing.T) {
	src := &fakeSource{users: map[int]types.User{}}
	resolver := newTestResolver(src)

	_, err := resolver.Resolve(context.Background(), 99, types.KindUser)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 1, src.calls, "a lookup miss must not be retried")
}

func TestResolveKindMismatchFailsClosed(t *testing.T) {
	// A mentor token whose id happens to match a user row must not
	// resolve: the kind tag routes into the mentor table only.
	src := &fakeSource{
		users:   map[int]types.User{1: {ID: 1}},
		mentors: map[int]types.Mentor{},
	}
	resolver := newTestResolver(src)

	_, err := resolver.Resolve(context.Background(), 1, types.KindMentor)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveRetriesTransientErrors(t *testing.T) {
	src := &fakeSource{
		users:    map[int]types.User{1: {ID: 1}},
		failures: 2,
	}
	resolver := newTestResolver(src)

	principal, err := resolver.Resolve(context.Background(), 1, types.KindUser)
	require.NoError(t, err)
	assert.Equal(t, 1, principal.ID())
	assert.Equal(t, 3, src.calls)
}

func TestResolveStoreDownYieldsStoreUnavailable(t *testing.T) {
	src := &fakeSource{
		users:    map[int]types.User{1: {ID: 1}},
		failures: 100,
	}
	resolver := newTestResolver(src)

	_, err := resolver.Resolve(context.Background(), 1, types.KindUser)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 4, src.calls, "retries are bounded")
}

func TestPrincipalIsAdmin(t *testing.T) {
	admin := Principal{Kind: types.KindUser, User: &types.User{ID: 1, Role: types.RoleAdmin}}
	student := Principal{Kind: types.KindUser, User: &types.User{ID: 2, Role: types.RoleStudent}}
	mentor := Principal{Kind: types.KindMentor, Mentor: &types.Mentor{ID: 3}}

	assert.True(t, admin.IsAdmin())
	assert.False(t, student.IsAdmin())
	assert.False(t, mentor.IsAdmin())
}
