package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Rup-source226/maa-care-ai/internal/http/middleware"
	"github.com/Rup-source226/maa-care-ai/internal/records"
	"github.com/Rup-source226/maa-care-ai/pkg/logging"
)

// UserStore is the slice of the record store the auth handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash, mobile, externalID, name string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*records.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*records.User, error)
	UpdateUser(ctx context.Context, username string, upd records.UserUpdate) error
}

// IdentityVerifier resolves an external identity token to a stable subject
// id plus whatever profile fields the provider shares.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*ExternalIdentity, error)
}

// ExternalIdentity is the provider's view of a verified account.
type ExternalIdentity struct {
	Subject string
	Name    string
	Mobile  string
}

// Auth serves signup, login, logout, profile and external identity linking.
type Auth struct {
	users    UserStore
	sessions *middleware.Sessions
	identity IdentityVerifier
	logger   *logging.Logger
}

func NewAuth(users UserStore, sessions *middleware.Sessions, identity IdentityVerifier, logger *logging.Logger) *Auth {
	if logger == nil {
		logger = logging.Default()
	}
	return &Auth{users: users, sessions: sessions, identity: identity, logger: logger}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Mobile   string `json:"mobile"`
	Name     string `json:"name"`
}

// Signup registers a new username with a bcrypt-hashed password and starts
// a session.
func (a *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		a.serverError(w, err)
		return
	}

	if _, err := a.users.CreateUser(r.Context(), in.Username, string(hash), strings.TrimSpace(in.Mobile), "", strings.TrimSpace(in.Name)); err != nil {
		if errors.Is(err, records.ErrUsernameTaken) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "Username already exists"})
			return
		}
		a.serverError(w, err)
		return
	}

	if _, err := a.sessions.Issue(w, in.Username); err != nil {
		a.serverError(w, err)
		return
	}
	a.logger.Info("user registered", "username", in.Username)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Account created", "username": in.Username})
}

// Login checks the password against the stored bcrypt hash and starts a
// session. Unknown users and wrong passwords get the same answer.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, err := a.users.GetUserByUsername(r.Context(), strings.TrimSpace(in.Username))
	if err != nil {
		a.serverError(w, err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
		return
	}

	if _, err := a.sessions.Issue(w, user.Username); err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged in", "username": user.Username})
}

// Logout clears the session cookie.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Profile returns the logged-in user's record.
func (a *Auth) Profile(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}

	user, err := a.users.GetUserByUsername(r.Context(), sess.Username)
	if err != nil {
		a.serverError(w, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileUpdate struct {
	Mobile *string `json:"mobile"`
	Name   *string `json:"name"`
}

// UpdateProfile applies a partial update to the logged-in user's record.
// Absent fields stay untouched.
func (a *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}

	var in profileUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	upd := records.UserUpdate{Mobile: in.Mobile, Name: in.Name}
	if err := a.users.UpdateUser(r.Context(), sess.Username, upd); err != nil {
		a.serverError(w, err)
		return
	}

	user, err := a.users.GetUserByUsername(r.Context(), sess.Username)
	if err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type externalLogin struct {
	Token string `json:"token"`
}

// External exchanges a provider identity token for a session. A first-time
// subject gets a user row keyed by the provider subject id; returning
// subjects are matched on it.
func (a *Auth) External(w http.ResponseWriter, r *http.Request) {
	if a.identity == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "external login is not configured"})
		return
	}

	var in externalLogin
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	ident, err := a.identity.Verify(r.Context(), in.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "identity verification failed"})
		return
	}

	user, err := a.users.GetUserByExternalID(r.Context(), ident.Subject)
	if err != nil {
		a.serverError(w, err)
		return
	}
	if user == nil {
		username := externalUsername(ident)
		if _, err := a.users.CreateUser(r.Context(), username, "", ident.Mobile, ident.Subject, ident.Name); err != nil {
			if errors.Is(err, records.ErrUsernameTaken) {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "Username already exists"})
				return
			}
			a.serverError(w, err)
			return
		}
		user = &records.User{Username: username, Name: ident.Name, Mobile: ident.Mobile}
	}

	if _, err := a.sessions.Issue(w, user.Username); err != nil {
		a.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged in", "username": user.Username})
}

func externalUsername(ident *ExternalIdentity) string {
	if ident.Name != "" {
		return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(ident.Name), " ", ".")) + "." + shortSubject(ident.Subject)
	}
	return "user." + shortSubject(ident.Subject)
}

func shortSubject(subject string) string {
	if len(subject) > 8 {
		return subject[:8]
	}
	return subject
}

func (a *Auth) serverError(w http.ResponseWriter, err error) {
	a.logger.Error("auth request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
