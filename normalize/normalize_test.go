package normalize

import (
	"encoding/json"
	"testing"
)

func TestListShapes(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    int
		wantErr bool
	}{
		{"bare array", `[{"_id":"a"},{"_id":"b"}]`, 2, false},
		{"data wrapper", `{"data":[{"_id":"a"}]}`, 1, false},
		{"orders wrapper", `{"orders":[{"_id":"a"},{"_id":"b"},{"_id":"c"}]}`, 3, false},
		{"success envelope", `{"success":true,"data":[{"_id":"a"}]}`, 1, false},
		{"unknown key array", `{"count":2,"rows":[{"_id":"a"},{"_id":"b"}]}`, 2, false},
		{"empty wrapped list", `{"orders":[]}`, 0, false},
		{"empty object", `{}`, 0, true},
		{"no array anywhere", `{"success":false,"message":"nope"}`, 0, true},
		{"null", `null`, 0, true},
		{"empty body", ``, 0, true},
		{"string", `"hello"`, 0, true},
		{"number", `42`, 0, true},
		{"broken json", `{"data":[{"_id":"a"}`, 0, true},
		{"broken array", `[1,2`, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := List([]byte(tc.payload), "orders", "data")
			if got == nil {
				t.Fatalf("List returned nil slice")
			}
			if len(got) != tc.want {
				t.Fatalf("expected %d records, got %d", tc.want, len(got))
			}
			if tc.wantErr != (err != nil) {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}
			if err != nil && !IsDecodeError(err) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
		})
	}
}

func TestListKeyPriority(t *testing.T) {
	payload := `{"data":[{"_id":"d"}],"orders":[{"_id":"o1"},{"_id":"o2"}]}`

	got, err := List([]byte(payload), "orders", "data")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the orders key to win, got %d records", len(got))
	}

	got, _ = List([]byte(payload), "data", "orders")
	if len(got) != 1 {
		t.Fatalf("expected the data key to win, got %d records", len(got))
	}
}

func TestListSkipsNonArrayWrapperKey(t *testing.T) {
	payload := `{"data":{"note":"not a list"},"items":[{"_id":"x"}]}`
	got, err := List([]byte(payload), "data")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected fallback to first array field, got %d", len(got))
	}
}

func TestListScanIsDocumentOrder(t *testing.T) {
	payload := `{"b":[1],"a":[1,2]}`
	for i := 0; i < 20; i++ {
		got, _ := List([]byte(payload))
		if len(got) != 1 {
			t.Fatalf("expected first array in document order, got %d items", len(got))
		}
	}
}

func TestObject(t *testing.T) {
	obj, err := Object([]byte(`{"success":true,"product":{"_id":"p1","title":"x"}}`), "product", "data")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(obj, &m); err != nil || m["_id"] != "p1" {
		t.Fatalf("expected product object, got %s", obj)
	}

	bare, err := Object([]byte(`{"_id":"p2"}`), "product")
	if err != nil || string(bare) != `{"_id":"p2"}` {
		t.Fatalf("expected bare object back, got %s (%v)", bare, err)
	}

	if _, err := Object([]byte(`{"product":null}`), "product"); err == nil {
		t.Fatalf("expected error for null product")
	}
	if _, err := Object([]byte(`[1]`), "product"); err == nil {
		t.Fatalf("expected error for array payload")
	}
}
