// Package messages is the inbound enquiries dashboard: sales enquiries and requirement
// submissions shown side by side.
package messages

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"

	"agroadmin/apiclient"
	"agroadmin/models"
	"agroadmin/normalize"
	"agroadmin/session"
	"agroadmin/utils"

	"github.com/julienschmidt/httprouter"
)

const (
	salesPath        = "/api/form/getsalse"
	requirementsPath = "/api/form/getrequirement"
)

// Filter values accepted by View.
const (
	FilterAll          = "all"
	FilterSales        = "sales"
	FilterRequirements = "requirements"
)

// source is one of the two feeds. Each keeps its own error and decode warning.
type source struct {
	leads   []models.Lead
	err     *apiclient.Error
	warning string
}

type Page struct {
	mu           sync.Mutex
	sales        source
	requirements source
	loaded       bool
}

func newPage() *Page {
	return &Page{
		sales:        source{leads: []models.Lead{}},
		requirements: source{leads: []models.Lead{}},
	}
}

type Service struct {
	api   *apiclient.Client
	pages *session.Scoped[Page]
}

func NewService(api *apiclient.Client, sessions *session.Manager) *Service {
	return &Service{api: api, pages: session.NewScoped(sessions, newPage)}
}

func (s *Service) fetch(ctx context.Context, sess *session.Session, path string, decode func([]byte) ([]models.Lead, error)) source {
	raw, err := s.api.Do(ctx, sess, http.MethodGet, path, nil)
	if err != nil {
		log.Printf("[messages] %s: %v", path, err)
		return source{leads: []models.Lead{}, err: apiclient.As(err)}
	}
	leads, derr := decode(raw)
	if leads == nil {
		leads = []models.Lead{}
	}
	src := source{leads: leads}
	if derr != nil {
		log.Printf("[messages] %s decode: %v", path, derr)
		src.warning = "Some messages could not be displayed."
	}
	return src
}

// Load fetches both feeds in parallel. A failed feed is shown empty with its own error; the
// page only fails when both do.
func (s *Service) Load(ctx context.Context, sess *session.Session) {
	var sales, reqs source
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sales = s.fetch(ctx, sess, salesPath, normalize.Sales)
	}()
	go func() {
		defer wg.Done()
		reqs = s.fetch(ctx, sess, requirementsPath, normalize.Requirements)
	}()
	wg.Wait()

	p := s.pages.Get(sess.ID)
	p.mu.Lock()
	p.sales = sales
	p.requirements = reqs
	p.loaded = true
	p.mu.Unlock()
}

// Counts are the per-feed totals, before search and filter.
type Counts struct {
	Sales        int `json:"sales"`
	Requirements int `json:"requirements"`
	Shown        int `json:"shown"`
}

type View struct {
	Messages            []models.Lead    `json:"messages"`
	Counts              Counts           `json:"counts"`
	Filter              string           `json:"filter"`
	SalesError          string           `json:"salesError,omitempty"`
	RequirementsError   string           `json:"requirementsError,omitempty"`
	SalesWarning        string           `json:"salesWarning,omitempty"`
	RequirementsWarning string           `json:"requirementsWarning,omitempty"`
	Error               *apiclient.Error `json:"-"`
}

func matches(l models.Lead, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, s := range []string{l.FullName, l.CompanyName, l.CompanyEmail} {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// Combine concatenates the selected feeds (sales first) and applies the search term.
func Combine(sales, requirements []models.Lead, filter, search string) []models.Lead {
	var feeds [][]models.Lead
	switch filter {
	case FilterSales:
		feeds = [][]models.Lead{sales}
	case FilterRequirements:
		feeds = [][]models.Lead{requirements}
	default:
		feeds = [][]models.Lead{sales, requirements}
	}
	out := []models.Lead{}
	for _, feed := range feeds {
		for _, l := range feed {
			if matches(l, search) {
				out = append(out, l)
			}
		}
	}
	return out
}

func (s *Service) View(ctx context.Context, sess *session.Session, q utils.ListQuery) View {
	p := s.pages.Get(sess.ID)
	p.mu.Lock()
	loaded := p.loaded
	p.mu.Unlock()
	if !loaded {
		s.Load(ctx, sess)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	filter := q.Type
	if filter != FilterSales && filter != FilterRequirements {
		filter = FilterAll
	}
	shown := Combine(p.sales.leads, p.requirements.leads, filter, q.Search)
	v := View{
		Messages: shown,
		Counts: Counts{
			Sales:        len(p.sales.leads),
			Requirements: len(p.requirements.leads),
			Shown:        len(shown),
		},
		Filter:              filter,
		SalesWarning:        p.sales.warning,
		RequirementsWarning: p.requirements.warning,
	}
	if p.sales.err != nil {
		v.SalesError = p.sales.err.Message
	}
	if p.requirements.err != nil {
		v.RequirementsError = p.requirements.err.Message
	}
	if p.sales.err != nil && p.requirements.err != nil {
		v.Error = p.sales.err
	}
	return v
}

// GetMessages renders the dashboard. ?refresh=true refetches both feeds first.
func (s *Service) GetMessages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session.FromContext(r.Context())
	if r.URL.Query().Get("refresh") == "true" {
		s.Load(r.Context(), sess)
	}
	v := s.View(r.Context(), sess, utils.ParseListQuery(r))
	if v.Error != nil {
		utils.RespondWithJSON(w, v.Error.HTTPStatus(), utils.M{
			"success":           false,
			"kind":              v.Error.Kind,
			"message":           "Failed to fetch data",
			"action":            v.Error.Action(),
			"salesError":        v.SalesError,
			"requirementsError": v.RequirementsError,
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "page": v})
}
