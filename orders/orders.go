// Package orders is the order management page: the order list, status changes and printable
// order slips.
package orders

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"agroadmin/apiclient"
	"agroadmin/audit"
	"agroadmin/models"
	"agroadmin/normalize"
	"agroadmin/reconcile"
	"agroadmin/session"
	"agroadmin/utils"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	listPath   = "/api/order/getOrders"
	statusPath = "/api/order/orderstatus/"
)

type Page struct {
	mu      sync.Mutex
	orders  []models.Order
	loaded  bool
	err     *apiclient.Error
	warning string
	guard   utils.Guard
}

func newPage() *Page {
	return &Page{orders: []models.Order{}}
}

type Service struct {
	api   *apiclient.Client
	audit audit.Recorder
	pages *session.Scoped[Page]
	now   func() time.Time
}

func NewService(api *apiclient.Client, rec audit.Recorder, sessions *session.Manager) *Service {
	return &Service{
		api:   api,
		audit: rec,
		pages: session.NewScoped(sessions, newPage),
		now:   time.Now,
	}
}

func (s *Service) page(sess *session.Session) *Page {
	return s.pages.Get(sess.ID)
}

// Load refetches the order list. On failure the previous list is kept and the error is shown
// with a retry.
func (s *Service) Load(ctx context.Context, sess *session.Session) error {
	p := s.page(sess)
	raw, err := s.api.Do(ctx, sess, http.MethodGet, listPath, nil)
	if err != nil {
		log.Printf("[orders] load: %v", err)
		p.mu.Lock()
		p.err = apiclient.As(err)
		p.loaded = true
		p.mu.Unlock()
		return err
	}

	list, derr := normalize.OrdersAt(raw, s.now)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = list
	p.loaded = true
	p.err = nil
	p.warning = ""
	if derr != nil {
		log.Printf("[orders] decode: %v", derr)
		p.warning = "Some orders could not be displayed."
	}
	return nil
}

func (s *Service) ensureLoaded(ctx context.Context, sess *session.Session) {
	p := s.page(sess)
	p.mu.Lock()
	loaded := p.loaded
	p.mu.Unlock()
	if !loaded {
		_ = s.Load(ctx, sess)
	}
}

// ErrNotFound is returned for order ids missing from the local list.
var ErrNotFound = errors.New("order not found")

// Order returns the order matching id from the local list.
func (s *Service) Order(ctx context.Context, sess *session.Session, id string) (models.Order, error) {
	s.ensureLoaded(ctx, sess)
	p := s.page(sess)
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := reconcile.Index(p.orders, id); i >= 0 {
		return p.orders[i], nil
	}
	return models.Order{}, ErrNotFound
}

// Orders returns a copy of the local list.
func (s *Service) Orders(sess *session.Session) []models.Order {
	p := s.page(sess)
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Order{}, p.orders...)
}

// SetStatus changes the status of the order matching id. Choosing the status the order
// already has sends nothing; changed is false then.
func (s *Service) SetStatus(ctx context.Context, sess *session.Session, id string, status models.OrderStatus) (order models.Order, changed bool, err error) {
	if !status.Valid() {
		return models.Order{}, false, &apiclient.Error{Kind: apiclient.KindValidation, Status: http.StatusBadRequest, Message: "Please choose a valid order status"}
	}
	p := s.page(sess)

	remoteID := id
	var from models.OrderStatus
	p.mu.Lock()
	if i := reconcile.Index(p.orders, id); i >= 0 {
		cur := p.orders[i]
		if cur.OrderStatus == status {
			p.mu.Unlock()
			return cur, false, nil
		}
		from = cur.OrderStatus
		if cur.ID != "" {
			remoteID = cur.ID
		} else {
			remoteID = cur.OrderID
		}
	}
	p.mu.Unlock()

	if !p.guard.Acquire() {
		return models.Order{}, false, utils.ErrBusy
	}
	defer p.guard.Release()

	body := map[string]string{"status": string(status)}
	if _, err := s.api.Do(ctx, sess, http.MethodPut, statusPath+remoteID, body); err != nil {
		log.Printf("[orders] status %s -> %s: %v", remoteID, status, err)
		return models.Order{}, false, err
	}

	now := s.now()
	p.mu.Lock()
	list, ok := reconcile.Replace(p.orders, id, func(old models.Order) models.Order {
		old.OrderStatus = status
		old.UpdatedAt = now
		order = old
		return old
	})
	p.orders = list
	p.mu.Unlock()
	if !ok {
		order = models.Order{ID: remoteID, OrderStatus: status, UpdatedAt: now}
	}

	s.audit.Record(ctx, audit.Entry{
		Action:   audit.OrderStatus,
		Entity:   "order",
		EntityID: remoteID,
		UserID:   sess.UserID,
		Detail:   bson.M{"from": string(from), "to": string(status)},
	})
	return order, true, nil
}
