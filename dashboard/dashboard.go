// Package dashboard serves the landing widgets of the admin console.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"agroadmin/apiclient"
	"agroadmin/models"
	"agroadmin/normalize"
	"agroadmin/orders"
	"agroadmin/session"
	"agroadmin/utils"

	"github.com/julienschmidt/httprouter"
)

const ordersPath = "/api/order/getOrders"

// Expirer ends a session whose upstream token was rejected.
type Expirer interface {
	Destroy(ctx context.Context, id string) error
}

type Service struct {
	api     *apiclient.Client
	limit   int
	expirer Expirer
	now     func() time.Time
}

// NewService shows the limit most recent orders. expirer may be nil.
func NewService(api *apiclient.Client, limit int, expirer Expirer) *Service {
	if limit <= 0 {
		limit = 5
	}
	return &Service{api: api, limit: limit, expirer: expirer, now: time.Now}
}

// RecentOrder is one row of the widget.
type RecentOrder struct {
	models.Order
	Reference string `json:"reference"`
}

// reference is the last eight characters of the order id, or a positional fallback.
func reference(o models.Order, i int) string {
	id := o.OrderID
	if id == "" {
		id = o.ID
	}
	switch {
	case id == "":
		return fmt.Sprintf("ORD%03d", i)
	case len(id) > 8:
		return id[len(id)-8:]
	default:
		return id
	}
}

// widgetError maps a failed fetch to the widget's own messages.
func widgetError(err error) *apiclient.Error {
	ae := apiclient.As(err)
	out := *ae
	switch ae.Status {
	case http.StatusUnauthorized:
		out.Message = "Your session has expired. Please log in again."
	case http.StatusForbidden:
		out.Kind = apiclient.KindValidation
		out.Message = "You do not have permission to view orders."
	case http.StatusNotFound:
		out.Message = "Orders endpoint not found. Please contact support."
	}
	return &out
}

// RecentOrders fetches the order list and returns the newest orders.
func (s *Service) RecentOrders(ctx context.Context, sess *session.Session) ([]RecentOrder, error) {
	raw, err := s.api.Do(ctx, sess, http.MethodGet, ordersPath, nil)
	if err != nil {
		log.Printf("[dashboard] recent orders: %v", err)
		werr := widgetError(err)
		if werr.Status == http.StatusUnauthorized && s.expirer != nil && sess != nil {
			if derr := s.expirer.Destroy(ctx, sess.ID); derr != nil {
				log.Printf("[dashboard] end session: %v", derr)
			}
		}
		return []RecentOrder{}, werr
	}

	list, derr := normalize.OrdersAt(raw, s.now)
	if derr != nil {
		log.Printf("[dashboard] decode: %v", derr)
		if len(list) == 0 {
			return []RecentOrder{}, &apiclient.Error{Kind: apiclient.KindDecode, Message: "Unexpected data format received from server", Err: derr}
		}
	}
	list = orders.Filter(list, orders.FilterAll, orders.SortRecent)
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	out := make([]RecentOrder, len(list))
	for i, o := range list {
		out[i] = RecentOrder{Order: o, Reference: reference(o, i)}
	}
	return out, nil
}

func (s *Service) GetRecentOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session.FromContext(r.Context())
	recent, err := s.RecentOrders(r.Context(), sess)
	if err != nil {
		ae := apiclient.As(err)
		utils.RespondWithJSON(w, ae.HTTPStatus(), utils.M{
			"success": false,
			"kind":    ae.Kind,
			"message": ae.Message,
			"action":  ae.Action(),
			"orders":  recent,
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "orders": recent})
}
