// server/auth/auth.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"lanewar/server/store"
)

const MinPasswordLen = 6

var ErrUnauthorized = errors.New("unauthorized")

// Users is the account storage the handlers need.
type Users interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*store.User, error)
	UserByName(ctx context.Context, username string) (*store.User, error)
}

type Options struct {
	KeyFile  string
	Issuer   string
	TokenTTL time.Duration
}

type Auth struct {
	users  Users
	jwtKey []byte
	issuer string
	ttl    time.Duration
	log    zerolog.Logger
}

// loadKey reads the signing key, creating one when the file is missing or short.
func loadKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil && len(key) >= 32 {
		return key, nil
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0o755)
		if err := os.WriteFile(path, key, 0o600); err != nil {
			return nil, err
		}
	}
	return key, nil
}

// NewAuth builds the handlers. An empty KeyFile keeps the key in memory only.
func NewAuth(users Users, opts Options, log zerolog.Logger) (*Auth, error) {
	key, err := loadKey(opts.KeyFile)
	if err != nil {
		return nil, err
	}
	if opts.Issuer == "" {
		opts.Issuer = "LaneWar"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &Auth{users: users, jwtKey: key, issuer: opts.Issuer, ttl: opts.TokenTTL, log: log}, nil
}

type RegisterReq struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}
type RegisterResp struct {
	OK bool `json:"ok"`
}

func (a *Auth) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Username) > 64 || len(req.Password) < MinPasswordLen || req.Password != req.PasswordConfirm {
		http.Error(w, "invalid username or password mismatch / too short", http.StatusBadRequest)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.log.Error().Err(err).Msg("hashing password")
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	if _, err := a.users.CreateUser(r.Context(), req.Username, string(hash)); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			http.Error(w, "username already exists", http.StatusConflict)
			return
		}
		a.log.Error().Err(err).Str("user", req.Username).Msg("creating user")
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	a.log.Info().Str("user", req.Username).Msg("registered")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(RegisterResp{OK: true})
}

type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type LoginResp struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (a *Auth) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	u, err := a.users.UserByName(r.Context(), req.Username)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			a.log.Error().Err(err).Msg("loading user")
		}
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	signed, err := a.IssueToken(u.Username)
	if err != nil {
		a.log.Error().Err(err).Msg("signing token")
		http.Error(w, "token failed", http.StatusInternalServerError)
		return
	}
	a.log.Debug().Str("user", u.Username).Msg("login")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResp{Token: signed, Username: u.Username})
}

// IssueToken signs an HS256 token whose subject is username.
func (a *Auth) IssueToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtKey)
}

// ParseToken validates tok and returns its subject.
func (a *Auth) ParseToken(tok string) (string, error) {
	if tok == "" {
		return "", errors.New("missing token")
	}
	var claims jwt.RegisteredClaims
	t, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.jwtKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(a.issuer))
	if err != nil || !t.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("bad claims")
	}
	return claims.Subject, nil
}

// TokenFrom reads a bearer token from the Authorization header or the
// token query parameter (browsers cannot set headers on websocket dials).
func TokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

type ctxKey struct{}

// UserFrom returns the username RequireAuth stored on the request context.
func UserFrom(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(ctxKey{}).(string)
	return u, ok && u != ""
}

func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.ParseToken(TokenFrom(r))
		if err != nil {
			http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}
