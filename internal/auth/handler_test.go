package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/staybook/staybook/internal/auth"
	"github.com/staybook/staybook/internal/shared"
	_ "github.com/staybook/staybook/testing"
)

type stubRepo struct {
	users map[int64]*auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u, nil
}

func (s *stubRepo) Create(ctx context.Context, u auth.User) (int64, error) {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return 0, auth.ErrEmailTaken
		}
	}
	u.ID = int64(len(s.users) + 1)
	s.users[u.ID] = &u
	return u.ID, nil
}

type fixture struct {
	router  http.Handler
	repo    *stubRepo
	service *auth.Service
	mr      *miniredis.Miniredis
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubRepo{users: map[int64]*auth.User{
		1: {ID: 1, Email: "admin@staybook.test", PasswordHash: string(hash), Role: shared.RoleAdmin, IsActive: true},
		2: {ID: 2, Email: "gro@staybook.test", PasswordHash: string(hash), Role: shared.RoleStaff, IsActive: true},
		3: {ID: 3, Email: "old@staybook.test", PasswordHash: string(hash), Role: shared.RoleStaff, IsActive: false},
	}}
	tokens := auth.NewTokenIssuer("test-secret", 15*time.Minute)
	svc := auth.NewService(repo, tokens, auth.NewRefreshStore(client, time.Hour))
	mw := auth.NewMiddleware(tokens)

	r := chi.NewRouter()
	r.Route("/auth", auth.NewHandler(nil, svc, mw).MountRoutes)
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.With(mw.RequireRole(shared.RoleAdmin)).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return fixture{router: r, repo: repo, service: svc, mr: mr}
}

func post(router http.Handler, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func get(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, router http.Handler, email string) auth.TokenPair {
	t.Helper()
	rr := post(router, "/auth/login", `{"email":"`+email+`","password":"rahasia123"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Tokens auth.TokenPair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Tokens
}

func TestLoginAndMe(t *testing.T) {
	f := newFixture(t)
	pair := login(t, f.router, "admin@staybook.test")
	require.Equal(t, "Bearer", pair.TokenType)
	require.Equal(t, int64(900), pair.ExpiresIn)

	rr := get(f.router, "/auth/me", pair.AccessToken)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "admin@staybook.test")
	require.NotContains(t, rr.Body.String(), "password")
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	rr := post(f.router, "/auth/login", `{"email":"admin@staybook.test","password":"wrongpass"}`, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = post(f.router, "/auth/login", `{"email":"old@staybook.test","password":"rahasia123"}`, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = post(f.router, "/auth/login", `{"email":"nobody@staybook.test","password":"rahasia123"}`, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture(t)
	pair := login(t, f.router, "gro@staybook.test")

	rr := post(f.router, "/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var next auth.TokenPair
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &next))
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	rr = post(f.router, "/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := newFixture(t)
	pair := login(t, f.router, "gro@staybook.test")

	rr := post(f.router, "/auth/logout", `{"refresh_token":"`+pair.RefreshToken+`"}`, pair.AccessToken)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.False(t, f.mr.Exists("staybook:refresh:"+pair.RefreshToken))

	rr = post(f.router, "/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoleGuard(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusUnauthorized, get(f.router, "/admin", "").Code)
	require.Equal(t, http.StatusUnauthorized, get(f.router, "/admin", "garbage").Code)

	staff := login(t, f.router, "gro@staybook.test")
	require.Equal(t, http.StatusForbidden, get(f.router, "/admin", staff.AccessToken).Code)

	admin := login(t, f.router, "admin@staybook.test")
	require.Equal(t, http.StatusNoContent, get(f.router, "/admin", admin.AccessToken).Code)
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	f := newFixture(t)
	forged, err := auth.NewTokenIssuer("other-secret", time.Minute).Issue(auth.User{ID: 1, Role: shared.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, get(f.router, "/admin", forged).Code)
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.service.CreateUser(ctx, " New@Staybook.test ", "panjangsekali", shared.RoleStaff)
	require.NoError(t, err)
	require.Equal(t, "new@staybook.test", u.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("panjangsekali")))

	_, err = f.service.CreateUser(ctx, "x@staybook.test", "short", shared.RoleStaff)
	require.Error(t, err)
	_, err = f.service.CreateUser(ctx, "x@staybook.test", "panjangsekali", "owner")
	require.Error(t, err)
	_, err = f.service.CreateUser(ctx, "new@staybook.test", "panjangsekali", shared.RoleStaff)
	require.ErrorIs(t, err, auth.ErrEmailTaken)
}
