package products

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"agroadmin/forms"
	"agroadmin/session"
	"agroadmin/utils"

	"github.com/julienschmidt/httprouter"
)

func formFromRequest(r *http.Request) forms.ProductForm {
	return forms.ProductForm{
		Title:          r.FormValue("title"),
		Category:       r.FormValue("category"),
		Subcategory:    r.FormValue("subcategory"),
		Price:          r.FormValue("price"),
		Quantity:       r.FormValue("quantity"),
		Description:    r.FormValue("description"),
		KeyIngredients: r.FormValue("KeyIngredients"),
	}
}

func respondMutationError(w http.ResponseWriter, err error) {
	if errors.Is(err, utils.ErrBusy) {
		utils.RespondBusy(w)
		return
	}
	utils.RespondWithFailure(w, err)
}

func respondView(w http.ResponseWriter, v View) {
	if v.Error != nil {
		utils.RespondWithJSON(w, v.Error.HTTPStatus(), utils.M{
			"success":  false,
			"kind":     v.Error.Kind,
			"message":  v.Error.Message,
			"action":   v.Error.Action(),
			"products": v.Products,
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "page": v})
}

// GetProducts renders the inventory. ?refresh=true refetches the list first.
func (s *Service) GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session.FromContext(r.Context())
	if r.URL.Query().Get("refresh") == "true" {
		_ = s.Load(r.Context(), sess)
	}
	respondView(w, s.View(r.Context(), sess, utils.ParseListQuery(r)))
}

func (s *Service) CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session.FromContext(r.Context())
	if err := utils.ParseForm(w, r); err != nil {
		utils.RespondWithFormError(w, err)
		return
	}
	images, err := utils.ReadUploads(r, "images")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "validation", "Could not read the uploaded images", "none")
		return
	}

	errs, err := s.Create(r.Context(), sess, formFromRequest(r), images)
	switch {
	case err != nil:
		respondMutationError(w, err)
	case !errs.Valid():
		utils.RespondWithFieldErrors(w, errs)
	default:
		utils.RespondWithJSON(w, http.StatusCreated, utils.M{
			"success": true,
			"message": "Product added successfully",
			"form":    forms.ProductForm{},
		})
	}
}

func (s *Service) UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session.FromContext(r.Context())
	if err := utils.ParseForm(w, r); err != nil {
		utils.RespondWithFormError(w, err)
		return
	}
	images, err := utils.ReadUploads(r, "images")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "validation", "Could not read the uploaded images", "none")
		return
	}

	product, errs, err := s.Update(r.Context(), sess, ps.ByName("id"), formFromRequest(r), images)
	switch {
	case err != nil:
		respondMutationError(w, err)
	case !errs.Valid():
		utils.RespondWithFieldErrors(w, errs)
	default:
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success": true,
			"message": "Product updated successfully",
			"product": product,
		})
	}
}

func (s *Service) DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session.FromContext(r.Context())
	if err := s.Delete(r.Context(), sess, ps.ByName("id")); err != nil {
		respondMutationError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Product deleted successfully"})
}

func (s *Service) step(delta int) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sess := session.FromContext(r.Context())
		idx, err := s.Step(sess, ps.ByName("id"), delta)
		if err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "validation", "Product not found", "none")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "index": idx})
	}
}

func (s *Service) NextImage() httprouter.Handle { return s.step(1) }
func (s *Service) PrevImage() httprouter.Handle { return s.step(-1) }

// ExportInventory downloads the full local list as csv or xlsx.
func (s *Service) ExportInventory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session.FromContext(r.Context())
	s.ensureLoaded(r.Context(), sess)
	list := s.Products(sess)

	var (
		data []byte
		err  error
		ct   string
	)
	format := ps.ByName("format")
	switch format {
	case "csv":
		data, err = CSV(list)
		ct = "text/csv"
	case "xlsx":
		data, err = XLSX(list)
		ct = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		utils.RespondWithError(w, http.StatusNotFound, "validation", "Unknown export format", "none")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "server", "Failed to export inventory", "retry")
		return
	}

	name := fmt.Sprintf("product-inventory-%s.%s", time.Now().Format("2006-01-02"), format)
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Service) StageImages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session.FromContext(r.Context())
	if err := utils.ParseForm(w, r); err != nil {
		utils.RespondWithFormError(w, err)
		return
	}
	picked, err := utils.ReadUploads(r, "images")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "validation", "Could not read the uploaded images", "none")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "images": s.Stage(sess, picked)})
}

func (s *Service) ListStaged(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session.FromContext(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "images": s.Staged(sess)})
}

func (s *Service) UnstageImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session.FromContext(r.Context())
	if !s.Unstage(sess, ps.ByName("uid")) {
		utils.RespondWithError(w, http.StatusNotFound, "validation", "Image not found", "none")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "images": s.Staged(sess)})
}

func (s *Service) PreviewImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session.FromContext(r.Context())
	thumb, ok := s.Preview(sess, ps.ByName("uid"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "validation", "Image not found", "none")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(thumb)
}
