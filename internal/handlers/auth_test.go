package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/apiserver/internal/auth"
	"github.com/mentorhub/apiserver/internal/events"
	"github.com/mentorhub/apiserver/internal/services"
	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

type userRepoFake struct {
	users  map[int]types.User
	nextID int
}

func newUserRepoFake() *userRepoFake {
	return &userRepoFake{users: map[int]types.User{}, nextID: 1}
}

func (f *userRepoFake) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *userRepoFake) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *userRepoFake) Create(_ context.Context, user types.User) (types.User, error) {
	if _, err := f.GetByEmail(context.Background(), user.Email); err == nil {
		return types.User{}, store.ErrDuplicate
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *userRepoFake) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	f.users[user.ID] = user
	return user, nil
}

type mentorRepoFake struct {
	mentors map[int]types.Mentor
	nextID  int
}

func newMentorRepoFake() *mentorRepoFake {
	return &mentorRepoFake{mentors: map[int]types.Mentor{}, nextID: 1}
}

func (f *mentorRepoFake) GetByID(_ context.Context, id int) (types.Mentor, error) {
	mentor, ok := f.mentors[id]
	if !ok {
		return types.Mentor{}, store.ErrNotFound
	}
	return mentor, nil
}

func (f *mentorRepoFake) GetByEmail(_ context.Context, email string) (types.Mentor, error) {
	for _, m := range f.mentors {
		if m.Email == email {
			return m, nil
		}
	}
	return types.Mentor{}, store.ErrNotFound
}

func (f *mentorRepoFake) List(_ context.Context, offset, limit int) ([]types.Mentor, int, error) {
	var out []types.Mentor
	for _, m := range f.mentors {
		out = append(out, m)
	}
	return out, len(out), nil
}

func (f *mentorRepoFake) Create(_ context.Context, mentor types.Mentor) (types.Mentor, error) {
	if _, err := f.GetByEmail(context.Background(), mentor.Email); err == nil {
		return types.Mentor{}, store.ErrDuplicate
	}
	mentor.ID = f.nextID
	f.nextID++
	f.mentors[mentor.ID] = mentor
	return mentor, nil
}

func (f *mentorRepoFake) Update(_ context.Context, mentor types.Mentor) (types.Mentor, error) {
	if _, ok := f.mentors[mentor.ID]; !ok {
		return types.Mentor{}, store.ErrNotFound
	}
	f.mentors[mentor.ID] = mentor
	return mentor, nil
}

func (f *mentorRepoFake) SetStatus(_ context.Context, id int, status string) error {
	mentor, ok := f.mentors[id]
	if !ok {
		return store.ErrNotFound
	}
	mentor.Status = status
	f.mentors[id] = mentor
	return nil
}

type schoolRepoFake struct {
	schools map[int]types.School
	roster  map[int][]int
	nextID  int
}

func newSchoolRepoFake() *schoolRepoFake {
	return &schoolRepoFake{schools: map[int]types.School{}, roster: map[int][]int{}, nextID: 1}
}

func (f *schoolRepoFake) GetByID(_ context.Context, id int) (types.School, error) {
	school, ok := f.schools[id]
	if !ok {
		return types.School{}, store.ErrNotFound
	}
	return school, nil
}

func (f *schoolRepoFake) GetByEmail(_ context.Context, email string) (types.School, error) {
	for _, s := range f.schools {
		if s.Email == email {
			return s, nil
		}
	}
	return types.School{}, store.ErrNotFound
}

func (f *schoolRepoFake) Create(_ context.Context, school types.School) (types.School, error) {
	if _, err := f.GetByEmail(context.Background(), school.Email); err == nil {
		return types.School{}, store.ErrDuplicate
	}
	school.ID = f.nextID
	f.nextID++
	f.schools[school.ID] = school
	return school, nil
}

func (f *schoolRepoFake) Roster(_ context.Context, schoolID int) ([]types.User, error) {
	var out []types.User
	for _, id := range f.roster[schoolID] {
		out = append(out, types.User{ID: id})
	}
	return out, nil
}

func (f *schoolRepoFake) AddToRoster(_ context.Context, schoolID, userID int) error {
	for _, id := range f.roster[schoolID] {
		if id == userID {
			return nil
		}
	}
	f.roster[schoolID] = append(f.roster[schoolID], userID)
	return nil
}

func (f *schoolRepoFake) RemoveFromRoster(_ context.Context, schoolID, userID int) error {
	kept := f.roster[schoolID][:0]
	for _, id := range f.roster[schoolID] {
		if id != userID {
			kept = append(kept, id)
		}
	}
	f.roster[schoolID] = kept
	return nil
}

func newAuthRouter(users *userRepoFake, mentors *mentorRepoFake, schools *schoolRepoFake, codec *auth.Codec) http.Handler {
	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r,
			services.NewUserService(users),
			services.NewMentorService(mentors),
			services.NewSchoolService(schools, users),
			codec,
			events.NewBus(nil, nil),
		)
	})
	return router
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	codec := auth.NewCodec("test-secret", time.Hour)
	router := newAuthRouter(newUserRepoFake(), newMentorRepoFake(), newSchoolRepoFake(), codec)

	rec := doJSON(t, router, http.MethodPost, "/auth/user/register", RegisterRequest{
		Email: "alice@example.com", Name: "Alice", Password: "hunter22",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, types.KindUser, resp.Kind)

	id, kind, err := codec.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Equal(t, types.KindUser, kind)

	// The password hash never leaves the server.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	codec := auth.NewCodec("test-secret", time.Hour)
	router := newAuthRouter(newUserRepoFake(), newMentorRepoFake(), newSchoolRepoFake(), codec)

	body := RegisterRequest{Email: "alice@example.com", Name: "Alice", Password: "hunter22"}
	rec := doJSON(t, router, http.MethodPost, "/auth/user/register", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/user/register", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterUnknownKind(t *testing.T) {
	codec := auth.NewCodec("test-secret", time.Hour)
	router := newAuthRouter(newUserRepoFake(), newMentorRepoFake(), newSchoolRepoFake(), codec)

	rec := doJSON(t, router, http.MethodPost, "/auth/superuser/register", RegisterRequest{
		Email: "x@example.com", Name: "X", Password: "pw",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMentorRegistersPending(t *testing.T) {
	codec := auth.NewCodec("test-secret", time.Hour)
	mentors := newMentorRepoFake()
	router := newAuthRouter(newUserRepoFake(), mentors, newSchoolRepoFake(), codec)

	rec := doJSON(t, router, http.MethodPost, "/auth/mentor/register", RegisterRequest{
		Email: "bob@example.com", Name: "Bob", Password: "hunter22", Bio: "Go instructor",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	mentor, err := mentors.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, types.MentorPending, mentor.Status)
}

func TestLogin(t *testing.T) {
	codec := auth.NewCodec("test-secret", time.Hour)
	router := newAuthRouter(newUserRepoFake(), newMentorRepoFake(), newSchoolRepoFake(), codec)

	rec := doJSON(t, router, http.MethodPost, "/auth/user/register", RegisterRequest{
		Email: "alice@example.com", Name: "Alice", Password: "hunter22",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Correct credentials.
	rec = doJSON(t, router, http.MethodPost, "/auth/user/login", LoginRequest{
		Email: "alice@example.com", Password: "hunter22",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, kind, err := codec.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, types.KindUser, kind)

	// Wrong password and unknown email both yield the same 401.
	for _, req := range []LoginRequest{
		{Email: "alice@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "hunter22"},
	} {
		rec = doJSON(t, router, http.MethodPost, "/auth/user/login", req, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.True(t, strings.Contains(rec.Body.String(), "invalid credentials"))
	}
}

func TestMe(t *testing.T) {
	codec := auth.NewCodec("test-secret", time.Hour)
	router := newAuthRouter(newUserRepoFake(), newMentorRepoFake(), newSchoolRepoFake(), codec)

	rec := doJSON(t, router, http.MethodGet, "/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/auth/me", nil, userPrincipal(1))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, types.KindUser, resp.Kind)
	assert.Empty(t, resp.Token)
}
