package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMemoryRecorderRecent(t *testing.T) {
	var rec MemoryRecorder
	ctx := context.Background()
	rec.Record(ctx, Entry{Action: ProductCreated, EntityID: "p1"})
	rec.Record(ctx, Entry{Action: ProductDeleted, EntityID: "p1"})
	rec.Record(ctx, Entry{Action: OrderStatus, EntityID: "o1"})

	got, err := rec.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Action != OrderStatus || got[1].Action != ProductDeleted {
		t.Fatalf("unexpected entries %+v", got)
	}
	if got[0].At.IsZero() {
		t.Fatal("timestamp not set")
	}
	if all := rec.Entries(); len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
}

var _ Lister = (*MongoRecorder)(nil)
var _ Lister = (*MemoryRecorder)(nil)
var _ Recorder = LogRecorder{}

func TestRecentHandler(t *testing.T) {
	rec := &MemoryRecorder{}
	for _, a := range []string{ProductCreated, OrderStatus, ChargesUpdated} {
		rec.Record(context.Background(), Entry{Action: a})
	}
	rr := httptest.NewRecorder()
	RecentHandler(rec)(rr, httptest.NewRequest(http.MethodGet, "/admin/audit?limit=2", nil), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Entries []Entry `json:"entries"`
		Count   int     `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 || body.Entries[0].Action != ChargesUpdated {
		t.Fatalf("body = %+v", body)
	}
}
