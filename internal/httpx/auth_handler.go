package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shoplite/go-shop-api/internal/auth"
	"github.com/shoplite/go-shop-api/internal/users"
)

// UserStore is what the auth endpoints need from persistence.
type UserStore interface {
	Register(ctx context.Context, name, email, passwordHash string) (*users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
}

// TokenIssuer mints session tokens at login.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthHandler struct {
	Users  UserStore
	Tokens TokenIssuer
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Get("/logout", h.logout)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	switch {
	case req.Name == "":
		writeMessage(w, http.StatusBadRequest, "No name found")
		return
	case req.Email == "":
		writeMessage(w, http.StatusBadRequest, "No email found")
		return
	case req.Password == "":
		writeMessage(w, http.StatusBadRequest, "No password found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		internalError(w, r, err)
		return
	}

	u, err := h.Users.Register(ctx, req.Name, req.Email, hash)
	if errors.Is(err, users.ErrAlreadyExists) {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"user":    u,
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindByEmail(ctx, req.Email)
	if errors.Is(err, users.ErrNotFound) {
		writeMessage(w, http.StatusBadRequest, "User doesn't exists")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	if err := auth.ComparePassword(u.PasswordHash, req.Password); err != nil {
		writeMessage(w, http.StatusBadRequest, "Password mismatched")
		return
	}

	token, err := h.Tokens.Issue(u.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	setTokenCookie(w, token)
	w.Header().Set("token", token)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    u,
	})
}

// logout only clears the client-side token; it is idempotent.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	clearTokenCookie(w)
	writeMessage(w, http.StatusOK, "Logout successful!")
}
