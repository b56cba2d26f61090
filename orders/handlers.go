package orders

import (
	"errors"
	"net/http"

	"agroadmin/models"
	"agroadmin/session"
	"agroadmin/utils"

	"github.com/julienschmidt/httprouter"
)

// GetOrders renders the order list. ?refresh=true refetches first.
func (s *Service) GetOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session.FromContext(r.Context())
	if r.URL.Query().Get("refresh") == "true" {
		_ = s.Load(r.Context(), sess)
	}
	v := s.View(r.Context(), sess, utils.ParseListQuery(r))
	if v.Error != nil {
		utils.RespondWithJSON(w, v.Error.HTTPStatus(), utils.M{
			"success": false,
			"kind":    v.Error.Kind,
			"message": v.Error.Message,
			"action":  v.Error.Action(),
			"orders":  v.Orders,
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "page": v})
}

func (s *Service) GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session.FromContext(r.Context())
	o, err := s.Order(r.Context(), sess, ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "validation", "Order not found", "none")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "order": Row{Order: o, ShortID: o.ShortID()}})
}

func (s *Service) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session.FromContext(r.Context())
	var body struct {
		Status string `json:"status"`
	}
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "validation", "Invalid request body", "none")
		return
	}

	order, changed, err := s.SetStatus(r.Context(), sess, ps.ByName("id"), models.OrderStatus(body.Status))
	if err != nil {
		if errors.Is(err, utils.ErrBusy) {
			utils.RespondBusy(w)
			return
		}
		utils.RespondWithFailure(w, err)
		return
	}
	msg := "Order status updated to " + body.Status
	if !changed {
		msg = "Order status unchanged"
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "changed": changed, "message": msg, "order": order})
}

// PrintSlip downloads the packing slip of one order.
func (s *Service) PrintSlip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session.FromContext(r.Context())
	o, err := s.Order(r.Context(), sess, ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "validation", "Order not found", "none")
		return
	}
	pdf, err := Slip(o)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "server", "Failed to generate slip", "retry")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=order-"+o.ShortID()+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
