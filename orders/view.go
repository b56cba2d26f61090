package orders

import (
	"context"
	"slices"

	"agroadmin/apiclient"
	"agroadmin/models"
	"agroadmin/session"
	"agroadmin/utils"
)

const (
	SortRecent = "Recent"
	SortOldest = "Oldest"
	FilterAll  = "All"
)

// Row is an order as listed on the page.
type Row struct {
	models.Order
	ShortID string `json:"shortId"`
}

// Summary holds the counters shown above the list.
type Summary struct {
	Total     int     `json:"total"`
	Pending   int     `json:"pending"`
	Delivered int     `json:"delivered"`
	Revenue   float64 `json:"revenue"`
}

type View struct {
	Orders   []Row                `json:"orders"`
	Matched  int                  `json:"matched"`
	Summary  Summary              `json:"summary"`
	Statuses []models.OrderStatus `json:"statuses"`
	Filter   string               `json:"filter"`
	Sort     string               `json:"sort"`
	Busy     bool                 `json:"busy"`
	Warning  string               `json:"warning,omitempty"`
	Error    *apiclient.Error     `json:"-"`
}

// Filter keeps the orders with the given status ("All" or empty keeps everything) and sorts
// them by order date, newest first unless sortBy is "Oldest".
func Filter(list []models.Order, status, sortBy string) []models.Order {
	out := make([]models.Order, 0, len(list))
	for _, o := range list {
		if status == "" || status == FilterAll || string(o.OrderStatus) == status {
			out = append(out, o)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Order) int {
		if sortBy == SortOldest {
			return a.OrderDate.Compare(b.OrderDate)
		}
		return b.OrderDate.Compare(a.OrderDate)
	})
	return out
}

func Summarize(list []models.Order) Summary {
	sum := Summary{Total: len(list)}
	for _, o := range list {
		switch o.OrderStatus {
		case models.StatusPending:
			sum.Pending++
		case models.StatusDelivered:
			sum.Delivered++
		}
		sum.Revenue += o.TotalAmount
	}
	return sum
}

func (s *Service) View(ctx context.Context, sess *session.Session, q utils.ListQuery) View {
	s.ensureLoaded(ctx, sess)
	p := s.page(sess)
	p.mu.Lock()
	defer p.mu.Unlock()

	filter := q.Status
	if filter == "" {
		filter = FilterAll
	}
	sortBy := SortRecent
	if q.Sort == SortOldest {
		sortBy = SortOldest
	}
	matched := Filter(p.orders, filter, sortBy)
	filtered := utils.Truncate(matched, q.Limit)
	rows := make([]Row, len(filtered))
	for i, o := range filtered {
		rows[i] = Row{Order: o, ShortID: o.ShortID()}
	}
	return View{
		Orders:   rows,
		Matched:  len(matched),
		Summary:  Summarize(p.orders),
		Statuses: models.OrderStatuses,
		Filter:   filter,
		Sort:     sortBy,
		Busy:     p.guard.Busy(),
		Warning:  p.warning,
		Error:    p.err,
	}
}
