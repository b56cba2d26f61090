package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agroadmin/apiclient"
	"agroadmin/audit"
	"agroadmin/config"
	"agroadmin/ratelim"
	"agroadmin/session"

	"github.com/julienschmidt/httprouter"
)

func newRouter(t *testing.T) (*httprouter.Router, *session.Manager) {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"delcharge":[{"aircharge":10,"shipcharge":5}]}`))
	}))
	t.Cleanup(upstream.Close)

	sessions := session.NewManager(session.NewMemoryStore(), []byte("routes-secret"), time.Hour)
	router := httprouter.New()
	RoutesWrapper(router, Deps{
		Config:   config.Config{RecentOrdersLimit: 5, ResetTimeout: time.Second},
		API:      apiclient.New(upstream.URL),
		Sessions: sessions,
		Audit:    &audit.MemoryRecorder{},
		Limiter:  ratelim.NewRateLimiter(60, 10),
	})
	return router, sessions
}

func TestHealth(t *testing.T) {
	router, _ := newRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestAdminRoutesRequireAdminSession(t *testing.T) {
	router, sessions := newRouter(t)
	_, adminTok, err := sessions.Create(context.Background(), "up", "u1", "admin@farm.io", true)
	if err != nil {
		t.Fatal(err)
	}
	_, buyerTok, err := sessions.Create(context.Background(), "up", "u2", "buyer@farm.io", false)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"non-admin", buyerTok, http.StatusForbidden},
		{"admin", adminTok, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin/charges", nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Errorf("%s: status = %d, want %d (%s)", tc.name, rr.Code, tc.want, rr.Body)
		}
	}
}

func TestAuditRouteOnlyForListers(t *testing.T) {
	router := httprouter.New()
	sessions := session.NewManager(session.NewMemoryStore(), []byte("k"), time.Hour)
	AddAuditRoutes(router, audit.LogRecorder{}, sessions)
	if h, _, _ := router.Lookup(http.MethodGet, "/admin/audit"); h != nil {
		t.Fatal("audit route registered for a write-only recorder")
	}
	AddAuditRoutes(router, &audit.MemoryRecorder{}, sessions)
	if h, _, _ := router.Lookup(http.MethodGet, "/admin/audit"); h == nil {
		t.Fatal("audit route missing")
	}
}
