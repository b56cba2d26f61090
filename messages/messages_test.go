package messages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"agroadmin/apiclient"
	"agroadmin/models"
	"agroadmin/session"
	"agroadmin/utils"
)

var sess = &session.Session{ID: "s1", Token: "tok", IsAdmin: true}

const (
	salesJSON = `{"salse":[
		{"_id":"s1","fullName":"Asha Rao","companyName":"Green Leaf","companyEmail":"asha@greenleaf.in","SalesDetails":"500kg neem"},
		{"_id":"s2","fullName":"Ravi","companyName":"Spice Co","companyEmail":"ravi@spice.co"}]}`
	requirementsJSON = `{"requirements":[
		{"_id":"r1","fullName":"Meera","companyName":"Leafy Exports","companyEmail":"m@leafy.com","requirements":"organic tulsi"}]}`
)

func upstream(salesStatus, reqStatus int) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/form/getsalse", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(salesStatus)
		if salesStatus == http.StatusOK {
			w.Write([]byte(salesJSON))
		}
	})
	mux.HandleFunc("GET /api/form/getrequirement", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(reqStatus)
		if reqStatus == http.StatusOK {
			w.Write([]byte(requirementsJSON))
		}
	})
	return mux
}

func newService(t *testing.T, h http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewService(apiclient.New(srv.URL), nil)
}

func TestViewCombinesFeeds(t *testing.T) {
	svc := newService(t, upstream(http.StatusOK, http.StatusOK))
	v := svc.View(context.Background(), sess, utils.ListQuery{})
	if v.Error != nil || len(v.Messages) != 3 {
		t.Fatalf("view = %+v", v)
	}
	if v.Messages[0].Kind != models.LeadSales || v.Messages[2].Kind != models.LeadRequirements {
		t.Fatalf("kinds = %v %v", v.Messages[0].Kind, v.Messages[2].Kind)
	}
	if v.Messages[0].Details != "500kg neem" || v.Messages[2].Details != "organic tulsi" {
		t.Fatal("details not mapped")
	}
	if v.Counts.Sales != 2 || v.Counts.Requirements != 1 || v.Counts.Shown != 3 {
		t.Fatalf("counts = %+v", v.Counts)
	}
}

func TestViewFilterAndSearch(t *testing.T) {
	svc := newService(t, upstream(http.StatusOK, http.StatusOK))
	ctx := context.Background()

	v := svc.View(ctx, sess, utils.ListQuery{Type: FilterRequirements})
	if len(v.Messages) != 1 || v.Messages[0].ID != "r1" {
		t.Fatalf("requirements filter = %+v", v.Messages)
	}
	v = svc.View(ctx, sess, utils.ListQuery{Search: "LEAF"})
	if len(v.Messages) != 2 || v.Messages[0].ID != "s1" || v.Messages[1].ID != "r1" {
		t.Fatalf("search = %+v", v.Messages)
	}
	v = svc.View(ctx, sess, utils.ListQuery{Type: FilterSales, Search: "spice.co"})
	if len(v.Messages) != 1 || v.Messages[0].ID != "s2" || v.Counts.Shown != 1 || v.Counts.Sales != 2 {
		t.Fatalf("sales search = %+v", v)
	}
}

func TestOneFeedFailing(t *testing.T) {
	svc := newService(t, upstream(http.StatusInternalServerError, http.StatusOK))
	v := svc.View(context.Background(), sess, utils.ListQuery{})
	if v.Error != nil {
		t.Fatal("one failed feed must not fail the page")
	}
	if v.SalesError == "" || v.RequirementsError != "" {
		t.Fatalf("errors = %q / %q", v.SalesError, v.RequirementsError)
	}
	if len(v.Messages) != 1 || v.Messages[0].ID != "r1" {
		t.Fatalf("messages = %+v", v.Messages)
	}
}

func TestBothFeedsFailing(t *testing.T) {
	svc := newService(t, upstream(http.StatusUnauthorized, http.StatusBadGateway))
	v := svc.View(context.Background(), sess, utils.ListQuery{})
	if v.Error == nil || v.Messages == nil || len(v.Messages) != 0 {
		t.Fatalf("view = %+v", v)
	}
}

func TestCombineDoesNotShareInput(t *testing.T) {
	sales := []models.Lead{{ID: "a"}}
	out := Combine(sales, nil, FilterAll, "")
	out[0].ID = "changed"
	if sales[0].ID != "a" {
		t.Fatal("Combine aliased its input")
	}
}

func TestMalformedFeedWarns(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/form/getsalse", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"ok"}`))
	})
	mux.HandleFunc("GET /api/form/getrequirement", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(requirementsJSON))
	})
	svc := newService(t, mux)

	v := svc.View(context.Background(), sess, utils.ListQuery{})
	if v.Error != nil || v.SalesError != "" {
		t.Fatalf("malformed feed reported as a failure: %+v", v)
	}
	if v.SalesWarning == "" || v.RequirementsWarning != "" {
		t.Fatalf("warnings = %q / %q", v.SalesWarning, v.RequirementsWarning)
	}
	if len(v.Messages) != 1 || v.Messages[0].ID != "r1" || v.Counts.Sales != 0 {
		t.Fatalf("view = %+v", v)
	}
}
