package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"agroadmin/apiclient"
	"agroadmin/audit"
	"agroadmin/models"
	"agroadmin/session"
	"agroadmin/utils"

	"github.com/julienschmidt/httprouter"
)

const ordersJSON = `{"success":true,"orders":[
	{"_id":"665f00000000000000a1b2c3","orderId":"ORD-1001","customerName":"Asha","orderStatus":"Pending","totalAmount":450,
	 "items":[{"title":"Neem Oil","price":150,"quantity":3}],"orderDate":"2024-04-01T10:00:00Z"},
	{"_id":"665f00000000000000d4e5f6","orderId":"ORD-1002","customerName":"Ravi","orderStatus":"Delivered","totalAmount":100,
	 "orderDate":"2024-04-03T10:00:00Z"},
	{"_id":"665f0000000000000099aa00","customerName":"Meera","orderDate":"2024-04-02T10:00:00Z"}
]}`

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T, upstream http.Handler) (*Service, *session.Session, *audit.MemoryRecorder) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	rec := &audit.MemoryRecorder{}
	svc := NewService(apiclient.New(srv.URL), rec, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, &session.Session{ID: "s1", Token: "upstream-token", UserID: "admin1", IsAdmin: true}, rec
}

func TestPendingToShipped(t *testing.T) {
	var puts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/order/getOrders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ordersJSON))
	})
	mux.HandleFunc("PUT /api/order/orderstatus/{id}", func(w http.ResponseWriter, r *http.Request) {
		puts.Add(1)
		if id := r.PathValue("id"); id != "665f00000000000000a1b2c3" {
			t.Errorf("status sent for %s", id)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"status":"Shipped"}` {
			t.Errorf("body = %s", body)
		}
		w.Write([]byte(`{"success":true}`))
	})
	svc, sess, rec := newService(t, mux)
	ctx := context.Background()
	if err := svc.Load(ctx, sess); err != nil {
		t.Fatal(err)
	}
	before := svc.Orders(sess)

	order, changed, err := svc.SetStatus(ctx, sess, "ORD-1001", models.StatusShipped)
	if err != nil || !changed {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	if order.OrderStatus != models.StatusShipped || !order.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("order = %+v", order)
	}

	after := svc.Orders(sess)
	for i := range after {
		want := before[i].OrderStatus
		if i == 0 {
			want = models.StatusShipped
		}
		if after[i].OrderStatus != want || after[i].ID != before[i].ID {
			t.Fatalf("order %d: status %s id %s", i, after[i].OrderStatus, after[i].ID)
		}
	}

	// selecting the current status again sends nothing
	if _, changed, err := svc.SetStatus(ctx, sess, "ORD-1001", models.StatusShipped); err != nil || changed {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	if puts.Load() != 1 {
		t.Fatalf("expected one PUT, got %d", puts.Load())
	}
	if e := rec.Entries(); len(e) != 1 || e[0].Detail["from"] != "Pending" || e[0].Detail["to"] != "Shipped" {
		t.Fatalf("audit = %+v", e)
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc, sess, _ := newService(t, http.NotFoundHandler())
	_, _, err := svc.SetStatus(context.Background(), sess, "x", "Processing")
	if ae := apiclient.As(err); ae.Kind != apiclient.KindValidation {
		t.Fatalf("err = %v", err)
	}
}

func TestSetStatusFailureKeepsList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/order/getOrders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ordersJSON))
	})
	mux.HandleFunc("PUT /api/order/orderstatus/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Order already delivered"}`))
	})
	svc, sess, _ := newService(t, mux)
	ctx := context.Background()
	svc.Load(ctx, sess)

	_, _, err := svc.SetStatus(ctx, sess, "ORD-1002", models.StatusCancelled)
	ae := apiclient.As(err)
	if ae.Kind != apiclient.KindValidation || ae.Message != "Order already delivered" {
		t.Fatalf("err = %v", err)
	}
	if svc.Orders(sess)[1].OrderStatus != models.StatusDelivered {
		t.Fatal("failed update changed the local list")
	}
}

func TestFilterAndSummary(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC) }
	list := []models.Order{
		{ID: "a", OrderStatus: models.StatusPending, OrderDate: day(1), TotalAmount: 10},
		{ID: "b", OrderStatus: models.StatusDelivered, OrderDate: day(3), TotalAmount: 20},
		{ID: "c", OrderStatus: models.StatusPending, OrderDate: day(2), TotalAmount: 5.5},
	}
	ids := func(l []models.Order) string {
		var b strings.Builder
		for _, o := range l {
			b.WriteString(o.ID)
		}
		return b.String()
	}
	if got := ids(Filter(list, FilterAll, SortRecent)); got != "bca" {
		t.Fatalf("recent = %s", got)
	}
	if got := ids(Filter(list, "Pending", SortOldest)); got != "ac" {
		t.Fatalf("pending oldest = %s", got)
	}
	if got := ids(Filter(list, "Cancelled", SortRecent)); got != "" {
		t.Fatalf("cancelled = %s", got)
	}
	sum := Summarize(list)
	if sum.Total != 3 || sum.Pending != 2 || sum.Delivered != 1 || sum.Revenue != 35.5 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestSlip(t *testing.T) {
	o := models.Order{
		ID: "665f00000000000000a1b2c3", OrderID: "ORD-1001", CustomerName: "Asha", OrderStatus: models.StatusPending,
		Items:       []models.LineItem{{Title: "Neem Oil", Quantity: 3, Price: 150}},
		TotalAmount: 450, OrderDate: fixedNow, SpecialInstructions: "Leave at gate",
	}
	pdf, err := Slip(o)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatal("not a PDF")
	}
}

func TestUpdateStatusHandler(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/order/getOrders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ordersJSON))
	})
	mux.HandleFunc("PUT /api/order/orderstatus/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})
	svc, sess, _ := newService(t, mux)
	svc.Load(context.Background(), sess)

	req := httptest.NewRequest(http.MethodPut, "/admin/orders/ORD-1001/status", strings.NewReader(`{"status":"Shipped"}`))
	req = req.WithContext(session.WithContext(req.Context(), sess))
	rec := httptest.NewRecorder()
	svc.UpdateStatus(rec, req, httprouter.Params{{Key: "id", Value: "ORD-1001"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		Changed bool         `json:"changed"`
		Order   models.Order `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Changed || body.Order.OrderStatus != models.StatusShipped {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestViewErrorKeepsEmptyList(t *testing.T) {
	svc, sess, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	v := svc.View(context.Background(), sess, utils.ListQuery{})
	if v.Error == nil || v.Error.Kind != apiclient.KindServer || v.Orders == nil {
		t.Fatalf("view = %+v", v)
	}
	if !errors.Is(func() error { _, err := svc.Order(context.Background(), sess, "x"); return err }(), ErrNotFound) {
		t.Fatal("expected ErrNotFound")
	}
}

func TestViewLimit(t *testing.T) {
	svc, sess, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ordersJSON))
	}))
	v := svc.View(context.Background(), sess, utils.ListQuery{Limit: 1})
	if len(v.Orders) != 1 || v.Matched != 3 || v.Summary.Total != 3 {
		t.Fatalf("view = %+v", v)
	}
	if v.Orders[0].OrderID != "ORD-1002" {
		t.Fatalf("newest order = %s", v.Orders[0].OrderID)
	}
}
