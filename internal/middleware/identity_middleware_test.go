package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucasmrt/dondirect/internal/app/models"
	"github.com/lucasmrt/dondirect/internal/middleware"
	"github.com/lucasmrt/dondirect/internal/pkg/apperrors"
	"github.com/lucasmrt/dondirect/internal/pkg/auth"
)

const testCookie = "dd_session"

type stubSessionRepo struct {
	sessions map[string]string // token -> userID
	expired  map[string]bool
}

func (r *stubSessionRepo) Create(_ context.Context, token, userID string, _ time.Time) error {
	r.sessions[token] = userID
	return nil
}

func (r *stubSessionRepo) GetUserID(_ context.Context, token string) (string, error) {
	if r.expired[token] {
		return "", apperrors.ErrSessionExpired
	}
	userID, ok := r.sessions[token]
	if !ok {
		return "", apperrors.ErrSessionNotFound
	}
	return userID, nil
}

func (r *stubSessionRepo) Delete(_ context.Context, token string) error {
	delete(r.sessions, token)
	return nil
}

func (r *stubSessionRepo) DeleteExpired(_ context.Context) (int64, error) { return 0, nil }

type stubUserRepo struct {
	users map[string]*models.User
}

func (r *stubUserRepo) Upsert(_ context.Context, _ *models.User) error { return nil }

func (r *stubUserRepo) CreateWithAssociation(_ context.Context, _ *models.User, _ *models.Association) error {
	return nil
}

func (r *stubUserRepo) UpdateTypeWithAssociation(_ context.Context, _ string, _ models.UserType, _ *models.Association) error {
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, apperrors.ErrUserNotFound
}

func (r *stubUserRepo) EmailExists(_ context.Context, _ string) (bool, error) { return false, nil }

func (r *stubUserRepo) UpdateUserType(_ context.Context, _ string, _ models.UserType, _ *int64) error {
	return nil
}

type fixture struct {
	sessions *stubSessionRepo
	users    *stubUserRepo
	jwt      *auth.JWTService
	router   *gin.Engine
	seen     *models.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		sessions: &stubSessionRepo{sessions: map[string]string{}, expired: map[string]bool{}},
		users:    &stubUserRepo{users: map[string]*models.User{}},
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:   "test-secret",
			TokenIssuer: "id.test",
			TokenExp:    time.Hour,
		}),
	}

	identity := middleware.NewIdentityMiddleware(f.sessions, f.users, f.jwt, testCookie)

	f.router = gin.New()
	f.router.Use(identity.Identify())
	f.router.GET("/open", func(c *gin.Context) {
		f.seen = middleware.PrincipalFrom(c)
		c.Status(http.StatusOK)
	})
	f.router.GET("/protected", middleware.RequireAuth(), func(c *gin.Context) {
		f.seen = middleware.PrincipalFrom(c)
		c.Status(http.StatusOK)
	})
	return f
}

func (f *fixture) addUser(id, email string) {
	f.users.users[id] = &models.User{ID: id, Email: email}
}

func (f *fixture) do(t *testing.T, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	f.seen = nil
	req := httptest.NewRequest("GET", path, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestIdentify_SessionCookie(t *testing.T) {
	f := newFixture(t)
	f.addUser("u1", "marie@example.fr")
	f.sessions.sessions["tok-1"] = "u1"

	rec := f.do(t, "/open", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "tok-1"})
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if f.seen == nil || f.seen.ID != "u1" || f.seen.Email != "marie@example.fr" {
		t.Errorf("principal: got %+v, want u1", f.seen)
	}
}

func TestIdentify_ProviderClaims(t *testing.T) {
	f := newFixture(t)
	f.addUser("ext-1", "paul@example.fr")

	token, err := f.jwt.GenerateToken("ext-1", "paul@example.fr", "Paul", "Durand", "replit")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	rec := f.do(t, "/open", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if f.seen == nil || f.seen.ID != "ext-1" {
		t.Errorf("principal: got %+v, want ext-1", f.seen)
	}
}

func TestIdentify_SessionWinsOverClaims(t *testing.T) {
	f := newFixture(t)
	f.addUser("u1", "marie@example.fr")
	f.addUser("ext-1", "paul@example.fr")
	f.sessions.sessions["tok-1"] = "u1"

	token, err := f.jwt.GenerateToken("ext-1", "paul@example.fr", "Paul", "Durand", "replit")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	f.do(t, "/open", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "tok-1"})
		req.Header.Set("Authorization", "Bearer "+token)
	})

	if f.seen == nil || f.seen.ID != "u1" {
		t.Errorf("principal: got %+v, want session user u1", f.seen)
	}
}

func TestIdentify_DanglingCredentialsLeaveRequestAnonymous(t *testing.T) {
	f := newFixture(t)
	// Session points at a user that no longer exists.
	f.sessions.sessions["tok-ghost"] = "ghost"
	f.sessions.expired["tok-old"] = true

	cases := []struct {
		name   string
		mutate func(*http.Request)
	}{
		{"dangling session", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: testCookie, Value: "tok-ghost"})
		}},
		{"expired session", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: testCookie, Value: "tok-old"})
		}},
		{"garbage bearer token", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer not-a-jwt")
		}},
		{"unknown claims subject", func(req *http.Request) {
			token, _ := f.jwt.GenerateToken("nobody", "x@example.fr", "X", "Y", "replit")
			req.Header.Set("Authorization", "Bearer "+token)
		}},
	}

	for _, tc := range cases {
		rec := f.do(t, "/open", tc.mutate)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status got %d, want 200", tc.name, rec.Code)
		}
		if f.seen != nil {
			t.Errorf("%s: expected anonymous request, got principal %+v", tc.name, f.seen)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	f := newFixture(t)
	f.addUser("u1", "marie@example.fr")
	f.sessions.sessions["tok-1"] = "u1"

	rec := f.do(t, "/protected", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status got %d, want 401", rec.Code)
	}

	rec = f.do(t, "/protected", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "tok-1"})
	})
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated: status got %d, want 200", rec.Code)
	}
}
