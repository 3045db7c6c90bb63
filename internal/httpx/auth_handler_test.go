package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplite/go-shop-api/internal/auth"
	"github.com/shoplite/go-shop-api/internal/users"
)

// fakeUserStore mimics the registration transaction: one user and one cart
// per email, duplicates rejected.
type fakeUserStore struct {
	byEmail map[string]*users.User
	carts   map[string]int // user id -> cart count
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*users.User{}, carts: map[string]int{}}
}

func (f *fakeUserStore) Register(_ context.Context, name, email, hash string) (*users.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, users.ErrAlreadyExists
	}
	u := &users.User{ID: "u-" + email, Name: name, Email: email, PasswordHash: hash}
	f.byEmail[email] = u
	f.carts[u.ID]++
	return u, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*users.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func newAuthRouter(store UserStore, codec *auth.Codec) *chi.Mux {
	r := chi.NewRouter()
	h := &AuthHandler{Users: store, Tokens: codec}
	h.Register(r)
	return r
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	r := newAuthRouter(newFakeUserStore(), auth.NewCodec("secret", time.Hour))

	cases := []struct {
		body string
		want string
	}{
		{`{"email":"a@b.c","password":"pw"}`, "No name found"},
		{`{"name":"Ann","password":"pw"}`, "No email found"},
		{`{"name":"Ann","email":"a@b.c"}`, "No password found"},
	}
	for _, tc := range cases {
		rec := postJSON(t, r, "/register", tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), tc.want)
	}
}

func TestRegisterCreatesUserAndSingleCart(t *testing.T) {
	store := newFakeUserStore()
	r := newAuthRouter(store, auth.NewCodec("secret", time.Hour))

	rec := postJSON(t, r, "/register", `{"name":"Ann","email":"ann@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message string     `json:"message"`
		User    users.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Registration successful", resp.Message)
	assert.Equal(t, "Ann", resp.User.Name)
	assert.Equal(t, "ann@example.com", resp.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	// stored hash is not the plaintext
	stored := store.byEmail["ann@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw", stored.PasswordHash)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "pw"))
	assert.Equal(t, 1, store.carts[stored.ID])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	r := newAuthRouter(store, auth.NewCodec("secret", time.Hour))

	body := `{"name":"Ann","email":"ann@example.com","password":"pw"}`
	rec := postJSON(t, r, "/register", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, r, "/register", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")

	// still exactly one cart for that user
	assert.Equal(t, 1, store.carts[store.byEmail["ann@example.com"].ID])
}

func TestLoginFailuresAreDistinguishable(t *testing.T) {
	store := newFakeUserStore()
	hash, err := auth.HashPassword("right")
	require.NoError(t, err)
	_, err = store.Register(context.Background(), "Ann", "ann@example.com", hash)
	require.NoError(t, err)

	r := newAuthRouter(store, auth.NewCodec("secret", time.Hour))

	rec := postJSON(t, r, "/login", `{"email":"nobody@example.com","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User doesn't exists")

	rec = postJSON(t, r, "/login", `{"email":"ann@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password mismatched")
}

func TestLoginIssuesToken(t *testing.T) {
	store := newFakeUserStore()
	hash, err := auth.HashPassword("right")
	require.NoError(t, err)
	u, err := store.Register(context.Background(), "Ann", "ann@example.com", hash)
	require.NoError(t, err)

	codec := auth.NewCodec("secret", time.Hour)
	r := newAuthRouter(store, codec)

	rec := postJSON(t, r, "/login", `{"email":"ann@example.com","password":"right"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login successful")

	headerToken := rec.Header().Get("token")
	require.NotEmpty(t, headerToken)
	uid, err := codec.Verify(headerToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Equal(t, headerToken, cookies[0].Value)
}

func TestLogoutClearsCookie(t *testing.T) {
	r := newAuthRouter(newFakeUserStore(), auth.NewCodec("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logout successful!")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
