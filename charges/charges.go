// Package charges is the delivery charge settings page.
package charges

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"

	"agroadmin/apiclient"
	"agroadmin/audit"
	"agroadmin/forms"
	"agroadmin/models"
	"agroadmin/normalize"
	"agroadmin/session"
	"agroadmin/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	getPath    = "/api/charge/getcharge"
	updatePath = "/api/charge/update-deliverycharge"
)

type Page struct {
	mu     sync.Mutex
	charge models.DeliveryCharge
	loaded bool
	err    *apiclient.Error
	guard  utils.Guard
}

type Service struct {
	api   *apiclient.Client
	audit audit.Recorder
	pages *session.Scoped[Page]
}

func NewService(api *apiclient.Client, rec audit.Recorder, sessions *session.Manager) *Service {
	return &Service{
		api:   api,
		audit: rec,
		pages: session.NewScoped(sessions, func() *Page { return &Page{} }),
	}
}

// formValue shows a zero rate as an empty field.
func formValue(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// View is the charge form as rendered.
type View struct {
	Form   forms.ChargeForm      `json:"form"`
	Charge models.DeliveryCharge `json:"charge"`
	Busy   bool                  `json:"busy"`
	Error  *apiclient.Error      `json:"-"`
}

// Load fetches the current charges. An empty charge list leaves both fields empty.
func (s *Service) Load(ctx context.Context, sess *session.Session) error {
	p := s.pages.Get(sess.ID)
	raw, err := s.api.Do(ctx, sess, http.MethodGet, getPath, nil)
	if err == nil {
		var charge models.DeliveryCharge
		charge, err = normalize.DeliveryCharge(raw)
		if err != nil && normalize.IsDecodeError(err) {
			log.Printf("[charges] decode: %v", err)
			err = &apiclient.Error{Kind: apiclient.KindDecode, Message: "Failed to load default charges", Err: err}
		}
		if err == nil {
			p.mu.Lock()
			p.charge = charge
			p.loaded = true
			p.err = nil
			p.mu.Unlock()
			return nil
		}
	}
	log.Printf("[charges] load: %v", err)
	p.mu.Lock()
	p.loaded = true
	p.err = apiclient.As(err)
	p.mu.Unlock()
	return err
}

func (s *Service) View(ctx context.Context, sess *session.Session) View {
	p := s.pages.Get(sess.ID)
	p.mu.Lock()
	loaded := p.loaded
	p.mu.Unlock()
	if !loaded {
		_ = s.Load(ctx, sess)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return View{
		Form:   forms.ChargeForm{Air: formValue(p.charge.Air), Ship: formValue(p.charge.Ship)},
		Charge: p.charge,
		Busy:   p.guard.Busy(),
		Error:  p.err,
	}
}

// Update validates and sends the new charges. The local copy is replaced wholesale on success.
func (s *Service) Update(ctx context.Context, sess *session.Session, f forms.ChargeForm) (models.DeliveryCharge, forms.Errors, error) {
	air, ship, errs := forms.ValidateCharges(f)
	if !errs.Valid() {
		return models.DeliveryCharge{}, errs, nil
	}
	p := s.pages.Get(sess.ID)
	if !p.guard.Acquire() {
		return models.DeliveryCharge{}, nil, utils.ErrBusy
	}
	defer p.guard.Release()

	charge := models.DeliveryCharge{Air: air, Ship: ship}
	if _, err := s.api.Do(ctx, sess, http.MethodPut, updatePath, charge); err != nil {
		log.Printf("[charges] update: %v", err)
		return models.DeliveryCharge{}, nil, err
	}

	p.mu.Lock()
	prev := p.charge
	p.charge = charge
	p.loaded = true
	p.err = nil
	p.mu.Unlock()

	s.audit.Record(ctx, audit.Entry{
		Action:   audit.ChargesUpdated,
		Entity:   "deliverycharge",
		EntityID: "default",
		UserID:   sess.UserID,
		Detail:   bson.M{"air": air, "ship": ship, "prevAir": prev.Air, "prevShip": prev.Ship},
	})
	return charge, nil, nil
}

// GetCharges renders the form. ?refresh=true refetches first.
func (s *Service) GetCharges(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session.FromContext(r.Context())
	if r.URL.Query().Get("refresh") == "true" {
		_ = s.Load(r.Context(), sess)
	}
	v := s.View(r.Context(), sess)
	if v.Error != nil {
		utils.RespondWithJSON(w, v.Error.HTTPStatus(), utils.M{
			"success": false,
			"kind":    v.Error.Kind,
			"message": v.Error.Message,
			"action":  v.Error.Action(),
			"form":    v.Form,
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "page": v})
}

func (s *Service) UpdateCharges(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session.FromContext(r.Context())
	var f forms.ChargeForm
	if err := utils.DecodeJSON(r, &f); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "validation", "Invalid request body", "none")
		return
	}
	charge, errs, err := s.Update(r.Context(), sess, f)
	switch {
	case errors.Is(err, utils.ErrBusy):
		utils.RespondBusy(w)
	case err != nil:
		utils.RespondWithFailure(w, err)
	case !errs.Valid():
		utils.RespondWithFieldErrors(w, errs)
	default:
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success": true,
			"message": "Delivery charges updated successfully!",
			"charge":  charge,
		})
	}
}
