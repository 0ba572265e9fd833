package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanewar/server/store"
)

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open("sqlite", filepath.Join(dir, "auth.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	a, err := NewAuth(st, Options{KeyFile: filepath.Join(dir, "jwt.key")}, zerolog.Nop())
	require.NoError(t, err)
	return a
}

func post(h http.HandlerFunc, v any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(v)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(b)))
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	a := newTestAuth(t)

	rec := post(a.HandleRegister, RegisterReq{Username: "alice", Password: "secret1", PasswordConfirm: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = post(a.HandleRegister, RegisterReq{Username: "Alice", Password: "secret1", PasswordConfirm: "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post(a.HandleLogin, LoginReq{Username: "alice", Password: "wrong!!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(a.HandleLogin, LoginReq{Username: "ALICE", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp LoginResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)

	sub, err := a.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestRegisterValidation(t *testing.T) {
	a := newTestAuth(t)
	for _, req := range []RegisterReq{
		{Username: "", Password: "secret1", PasswordConfirm: "secret1"},
		{Username: "bob", Password: "short", PasswordConfirm: "short"},
		{Username: "bob", Password: "secret1", PasswordConfirm: "secret2"},
	} {
		assert.Equal(t, http.StatusBadRequest, post(a.HandleRegister, req).Code, req)
	}

	rec := httptest.NewRecorder()
	a.HandleRegister(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseTokenRejects(t *testing.T) {
	a := newTestAuth(t)

	_, err := a.ParseToken("")
	assert.Error(t, err)
	_, err = a.ParseToken("not.a.jwt")
	assert.Error(t, err)

	other, err := NewAuth(nil, Options{}, zerolog.Nop())
	require.NoError(t, err)
	foreign, err := other.IssueToken("mallory")
	require.NoError(t, err)
	_, err = a.ParseToken(foreign)
	assert.Error(t, err, "signed with another key")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    a.issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	tok, err := expired.SignedString(a.jwtKey)
	require.NoError(t, err)
	_, err = a.ParseToken(tok)
	assert.Error(t, err)
}

func TestKeyPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "k", "jwt.key")
	a1, err := NewAuth(nil, Options{KeyFile: path}, zerolog.Nop())
	require.NoError(t, err)
	a2, err := NewAuth(nil, Options{KeyFile: path}, zerolog.Nop())
	require.NoError(t, err)

	tok, err := a1.IssueToken("carol")
	require.NoError(t, err)
	sub, err := a2.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "carol", sub)
}

func TestRequireAuth(t *testing.T) {
	a := newTestAuth(t)
	var seen string
	h := a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := a.IssueToken("dave")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dave", seen)

	seen = ""
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?token="+tok, nil))
	assert.Equal(t, "dave", seen)
}
