// Package audit records successful admin mutations. Recording never fails the mutation: a
// write error is logged and dropped.
package audit

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Actions recorded by the pages.
const (
	ProductCreated = "product.create"
	ProductUpdated = "product.update"
	ProductDeleted = "product.delete"
	OrderStatus    = "order.status"
	ChargesUpdated = "charges.update"
	LoggedIn       = "auth.login"
	LoggedOut      = "auth.logout"
	PasswordReset  = "auth.reset"
)

type Entry struct {
	Action   string    `bson:"action" json:"action"`
	Entity   string    `bson:"entity" json:"entity"`
	EntityID string    `bson:"entityId" json:"entityId"`
	UserID   string    `bson:"userId" json:"userId"`
	At       time.Time `bson:"at" json:"at"`
	Detail   bson.M    `bson:"detail,omitempty" json:"detail,omitempty"`
}

// Recorder stores audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Lister is a Recorder that can read its entries back.
type Lister interface {
	Recorder
	Recent(ctx context.Context, limit int64) ([]Entry, error)
}

// LogRecorder only prints entries. It is used when no MongoDB is configured.
type LogRecorder struct{}

func (LogRecorder) Record(_ context.Context, e Entry) {
	log.Printf("[audit] %s %s/%s by %s", e.Action, e.Entity, e.EntityID, e.UserID)
}

// MongoRecorder inserts entries into a collection.
type MongoRecorder struct {
	coll *mongo.Collection
}

func NewMongoRecorder(coll *mongo.Collection) *MongoRecorder {
	return &MongoRecorder{coll: coll}
}

func (m *MongoRecorder) Record(ctx context.Context, e Entry) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if _, err := m.coll.InsertOne(ctx, e); err != nil {
		log.Printf("[audit] insert %s failed: %v", e.Action, err)
	}
}

// Recent returns the newest entries, newest first.
func (m *MongoRecorder) Recent(ctx context.Context, limit int64) ([]Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(limit)
	cur, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Entry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MemoryRecorder keeps entries in process.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *MemoryRecorder) Record(_ context.Context, e Entry) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
}

// Recent returns up to limit entries, newest first.
func (m *MemoryRecorder) Recent(_ context.Context, limit int64) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		if limit > 0 && int64(len(out)) == limit {
			break
		}
		out = append(out, m.entries[i])
	}
	return out, nil
}

// Entries returns a copy of everything recorded so far.
func (m *MemoryRecorder) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}
