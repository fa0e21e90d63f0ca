package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mentorhub/apiserver/internal/auth"
	"github.com/mentorhub/apiserver/internal/events"
	"github.com/mentorhub/apiserver/internal/services"
	"github.com/mentorhub/apiserver/internal/store"
	"github.com/mentorhub/apiserver/types"
)

// AuthHandler provides registration and login for all three principal
// kinds plus the /me introspection endpoint.
type AuthHandler struct {
	users   *services.UserService
	mentors *services.MentorService
	schools *services.SchoolService
	codec   *auth.Codec
	bus     *events.Bus
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(
	users *services.UserService,
	mentors *services.MentorService,
	schools *services.SchoolService,
	codec *auth.Codec,
	bus *events.Bus,
) *AuthHandler {
	return &AuthHandler{users: users, mentors: mentors, schools: schools, codec: codec, bus: bus}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(
	r chi.Router,
	users *services.UserService,
	mentors *services.MentorService,
	schools *services.SchoolService,
	codec *auth.Codec,
	bus *events.Bus,
) {
	handler := NewAuthHandler(users, mentors, schools, codec, bus)

	r.Post("/{kind}/register", handler.Register)
	r.Post("/{kind}/login", handler.Login)
	r.With(auth.RequireAuthenticated).Get("/me", handler.Me)
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Bio      string `json:"bio,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token plus the created or resolved
// principal record.
type AuthResponse struct {
	Token     string              `json:"token,omitempty"`
	Kind      types.PrincipalKind `json:"kind"`
	Principal any                 `json:"principal"`
}

// Register creates an account of the requested kind and returns a token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	kind, err := types.ParsePrincipalKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown principal kind")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	var (
		id        int
		principal any
		event     string
	)
	switch kind {
	case types.KindUser:
		user, err := h.users.Create(r.Context(), types.User{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: string(hashed),
		})
		if err != nil {
			h.writeCreateError(w, err)
			return
		}
		id, principal, event = user.ID, user, events.UserRegistered
	case types.KindMentor:
		mentor, err := h.mentors.Create(r.Context(), types.Mentor{
			Email:        req.Email,
			Name:         req.Name,
			Bio:          req.Bio,
			PasswordHash: string(hashed),
		})
		if err != nil {
			h.writeCreateError(w, err)
			return
		}
		id, principal, event = mentor.ID, mentor, events.MentorRegistered
	case types.KindSchool:
		school, err := h.schools.Create(r.Context(), types.School{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: string(hashed),
		})
		if err != nil {
			h.writeCreateError(w, err)
			return
		}
		id, principal, event = school.ID, school, events.SchoolRegistered
	}

	token, err := h.codec.Issue(id, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	h.bus.Emit(r.Context(), event, map[string]any{"id": id, "kind": kind, "email": req.Email})
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, Kind: kind, Principal: principal})
}

// Login verifies credentials for the requested kind and returns a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	kind, err := types.ParsePrincipalKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown principal kind")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	var (
		id        int
		hash      string
		principal any
	)
	switch kind {
	case types.KindUser:
		user, err := h.users.GetByEmail(r.Context(), req.Email)
		if err != nil {
			h.writeLoginError(w, err)
			return
		}
		id, hash, principal = user.ID, user.PasswordHash, user
	case types.KindMentor:
		mentor, err := h.mentors.GetByEmail(r.Context(), req.Email)
		if err != nil {
			h.writeLoginError(w, err)
			return
		}
		id, hash, principal = mentor.ID, mentor.PasswordHash, mentor
	case types.KindSchool:
		school, err := h.schools.GetByEmail(r.Context(), req.Email)
		if err != nil {
			h.writeLoginError(w, err)
			return
		}
		id, hash, principal = school.ID, school.PasswordHash, school
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.codec.Issue(id, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, Kind: kind, Principal: principal})
}

// Me returns the resolved principal for the presented token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized, no token")
		return
	}

	var record any
	switch principal.Kind {
	case types.KindUser:
		record = principal.User
	case types.KindMentor:
		record = principal.Mentor
	case types.KindSchool:
		record = principal.School
	}
	writeJSON(w, http.StatusOK, AuthResponse{Kind: principal.Kind, Principal: record})
}

func (h *AuthHandler) writeCreateError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	writeError(w, http.StatusInternalServerError, "failed to create account")
}

func (h *AuthHandler) writeLoginError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeError(w, http.StatusInternalServerError, "failed to authenticate")
}
