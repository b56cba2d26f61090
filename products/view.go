package products

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"agroadmin/apiclient"
	"agroadmin/models"
	"agroadmin/session"
	"agroadmin/utils"
)

// Card is a product as rendered on the inventory grid.
type Card struct {
	models.Product
	ActiveImage int  `json:"activeImage"`
	CanNavigate bool `json:"canNavigate"`
}

// View is the rendered inventory page.
type View struct {
	Products   []Card           `json:"products"`
	Total      int              `json:"total"`
	Matched    int              `json:"matched"`
	Categories []string         `json:"categories"`
	Busy       bool             `json:"busy"`
	Warning    string           `json:"warning,omitempty"`
	Error      *apiclient.Error `json:"-"`
}

func matches(p models.Product, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, s := range []string{p.Title, p.Description, p.Category} {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// Categories lists the distinct categories of list, sorted.
func Categories(list []models.Product) []string {
	out := []string{}
	for _, p := range list {
		if p.Category != "" && !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	slices.Sort(out)
	return out
}

func compareBy(key string) func(a, b models.Product) int {
	switch key {
	case "title", "name":
		return func(a, b models.Product) int { return cmp.Compare(a.Title, b.Title) }
	case "category":
		return func(a, b models.Product) int { return cmp.Compare(a.Category, b.Category) }
	case "price":
		return func(a, b models.Product) int { return cmp.Compare(a.Price, b.Price) }
	case "quantity":
		return func(a, b models.Product) int { return cmp.Compare(a.Quantity, b.Quantity) }
	case "lastUpdated":
		return func(a, b models.Product) int { return a.LastUpdated.Compare(b.LastUpdated) }
	default:
		return nil
	}
}

// Filter applies search, category filter and sort to list without modifying it.
func Filter(list []models.Product, q utils.ListQuery) []models.Product {
	out := make([]models.Product, 0, len(list))
	for _, p := range list {
		if !matches(p, q.Search) {
			continue
		}
		if q.Category != "" && q.Category != "all" && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}
	if fn := compareBy(q.Sort); fn != nil {
		slices.SortStableFunc(out, func(a, b models.Product) int {
			if q.Desc {
				return fn(b, a)
			}
			return fn(a, b)
		})
	}
	return out
}

// View renders the page for sess, loading the list on first use.
func (s *Service) View(ctx context.Context, sess *session.Session, q utils.ListQuery) View {
	s.ensureLoaded(ctx, sess)
	p := s.page(sess)
	p.mu.Lock()
	defer p.mu.Unlock()

	matched := Filter(p.products, q)
	filtered := utils.Truncate(matched, q.Limit)
	cards := make([]Card, len(filtered))
	for i, prod := range filtered {
		cards[i] = Card{
			Product:     prod,
			ActiveImage: p.carousel.Active(prod.Key(), len(prod.Images)),
			CanNavigate: len(prod.Images) > 1,
		}
	}
	return View{
		Products:   cards,
		Total:      len(p.products),
		Matched:    len(matched),
		Categories: Categories(p.products),
		Busy:       p.guard.Busy(),
		Warning:    p.warning,
		Error:      p.err,
	}
}
