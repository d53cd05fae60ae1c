package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/model"
	"purecerts-console/internal/session"
)

type stubState struct {
	mu sync.Mutex
	st session.AuthState
}

func (s *stubState) State() session.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func (s *stubState) set(st session.AuthState) {
	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
}

func guardedRouter(src StateSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireSession(src, GuardOptions{LoginPath: "/login"}))
	r.GET("/certificates", func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, u.Email)
	})
	r.POST("/certificates/:id/revoke", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRequireSession_Loading(t *testing.T) {
	r := guardedRouter(&stubState{st: session.AuthState{Loading: true}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/certificates", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 placeholder, got %d", w.Code)
	}
	if w.Header().Get("Refresh") == "" || !strings.Contains(w.Body.String(), "Loading") {
		t.Fatalf("expected auto-refreshing placeholder, got %q", w.Body.String())
	}
}

func TestRequireSession_RedirectsWhenSignedOut(t *testing.T) {
	r := guardedRouter(&stubState{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/certificates?status=active", nil))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?next=%2Fcertificates%3Fstatus%3Dactive" {
		t.Fatalf("unexpected location %q", loc)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/certificates/c1/revoke", nil))
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected bare login redirect for a post, got %q", loc)
	}
}

func TestRequireSession_ReevaluatesOnEveryRequest(t *testing.T) {
	src := &stubState{st: session.AuthState{User: &session.Identity{User: model.User{ID: "u1", Email: "a@b.com"}}}}
	r := guardedRouter(src)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/certificates", nil))
	if w.Code != http.StatusOK || w.Body.String() != "a@b.com" {
		t.Fatalf("expected page for signed-in user, got %d %q", w.Code, w.Body.String())
	}

	src.set(session.AuthState{})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/certificates", nil))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after sign-out, got %d", w.Code)
	}
}

func TestRequireSession_CustomLoading(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireSession(&stubState{st: session.AuthState{Loading: true}}, GuardOptions{
		Loading: func(c *gin.Context) { c.String(http.StatusOK, "custom") },
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Body.String() != "custom" {
		t.Fatalf("expected custom placeholder, got %q", w.Body.String())
	}
}
