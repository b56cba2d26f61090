package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agroadmin/session"

	"github.com/julienschmidt/httprouter"
)

func newManager(t *testing.T) (*session.Manager, string, string) {
	t.Helper()
	m := session.NewManager(session.NewMemoryStore(), []byte("secret"), time.Hour)
	_, admin, err := m.Create(context.Background(), "tok-admin", "u1", "", true)
	if err != nil {
		t.Fatal(err)
	}
	_, user, err := m.Create(context.Background(), "tok-user", "u2", "", false)
	if err != nil {
		t.Fatal(err)
	}
	return m, admin, user
}

func serve(h httprouter.Handle, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	return rec
}

func TestAuthenticate(t *testing.T) {
	m, admin, _ := newManager(t)
	var got *session.Session
	h := Authenticate(m, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		got = session.FromContext(r.Context())
	})

	for _, header := range []string{"", "Token abc", "Bearer nope"} {
		if rec := serve(h, header); rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status %d", header, rec.Code)
		}
	}
	if got != nil {
		t.Fatal("handler ran without a valid token")
	}

	if rec := serve(h, "Bearer "+admin); rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if got == nil || got.Token != "tok-admin" {
		t.Fatalf("session not attached: %+v", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	m, admin, user := newManager(t)
	h := RequireAdmin(m, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {})

	if rec := serve(h, "Bearer "+user); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin status %d", rec.Code)
	}
	if rec := serve(h, "Bearer "+admin); rec.Code != http.StatusOK {
		t.Fatalf("admin status %d", rec.Code)
	}
	if rec := serve(h, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status %d", rec.Code)
	}
}
