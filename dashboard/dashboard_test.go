package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agroadmin/apiclient"
	"agroadmin/session"
)

type fakeExpirer struct{ ids []string }

func (f *fakeExpirer) Destroy(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return nil
}

var sess = &session.Session{ID: "s1", Token: "tok", IsAdmin: true}

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	body := `{"success":true,"data":[
		{"_id":"a","orderId":"ORD-2024-000001","orderDate":"2024-04-01T00:00:00Z"},
		{"_id":"b","orderDate":"2024-04-03T00:00:00Z"},
		{"_id":"c","orderId":"ORD-2024-000003","orderDate":"2024-04-02T00:00:00Z"}]}`
	svc := NewService(apiclient.New(serve(t, http.StatusOK, body)), 2, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	got, err := svc.RecentOrders(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("got %+v", got)
	}
	if got[0].Reference != "b" || got[1].Reference != "4-000003" {
		t.Fatalf("references %q %q", got[0].Reference, got[1].Reference)
	}
}

func TestRecentOrdersErrors(t *testing.T) {
	cases := []struct {
		status  int
		message string
		action  string
	}{
		{http.StatusUnauthorized, "Your session has expired. Please log in again.", "login"},
		{http.StatusForbidden, "You do not have permission to view orders.", "none"},
		{http.StatusNotFound, "Orders endpoint not found. Please contact support.", "none"},
		{http.StatusInternalServerError, "Server error. Please try again later.", "retry"},
	}
	for _, tc := range cases {
		exp := &fakeExpirer{}
		svc := NewService(apiclient.New(serve(t, tc.status, `{}`)), 5, exp)
		got, err := svc.RecentOrders(context.Background(), sess)
		ae := apiclient.As(err)
		if ae == nil || ae.Message != tc.message || ae.Action() != tc.action {
			t.Errorf("%d: got %+v", tc.status, ae)
			continue
		}
		if got == nil {
			t.Errorf("%d: nil list", tc.status)
		}
		if expired := len(exp.ids) == 1; expired != (tc.status == http.StatusUnauthorized) {
			t.Errorf("%d: session destroyed = %v", tc.status, expired)
		}
	}
}

func TestRecentOrdersUnexpectedShape(t *testing.T) {
	svc := NewService(apiclient.New(serve(t, http.StatusOK, `{"success":true}`)), 5, nil)
	_, err := svc.RecentOrders(context.Background(), sess)
	if ae := apiclient.As(err); ae.Kind != apiclient.KindDecode {
		t.Fatalf("err = %v", err)
	}
}
