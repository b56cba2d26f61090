// Package products is the inventory page: the product list with its carousel state, the add
// product form and the edit, delete and export actions.
package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"agroadmin/apiclient"
	"agroadmin/audit"
	"agroadmin/carousel"
	"agroadmin/forms"
	"agroadmin/models"
	"agroadmin/normalize"
	"agroadmin/reconcile"
	"agroadmin/session"
	"agroadmin/utils"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	listPath   = "/api/product/get-all"
	addPath    = "/api/product/add"
	updatePath = "/api/product/update-product/"
	deletePath = "/api/product/delete-product/"
)

// Page is the inventory view of one admin session.
type Page struct {
	mu       sync.Mutex
	products []models.Product
	loaded   bool
	err      *apiclient.Error
	warning  string
	carousel *carousel.State
	staged   []staged
	guard    utils.Guard
}

func newPage() *Page {
	return &Page{products: []models.Product{}, carousel: carousel.New()}
}

// Service serves the inventory pages of every session.
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

// Load fetches the product list, replacing the local copy and resetting every carousel.
// On failure the previous list is kept and the error becomes the page error.
func (s *Service) Load(ctx context.Context, sess *session.Session) error {
	p := s.page(sess)
	raw, err := s.api.Do(ctx, sess, http.MethodGet, listPath, nil)
	if err != nil {
		log.Printf("[products] load: %v", err)
		p.mu.Lock()
		p.err = apiclient.As(err)
		p.loaded = true
		p.mu.Unlock()
		return err
	}

	list, derr := normalize.Products(raw)
	keys := make([]string, len(list))
	for i, prod := range list {
		keys[i] = prod.Key()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.products = list
	p.loaded = true
	p.err = nil
	p.warning = ""
	if derr != nil {
		log.Printf("[products] decode: %v", derr)
		p.warning = "Some products could not be displayed."
	}
	p.carousel.Reset(keys...)
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

func productFields(f forms.ProductForm) []apiclient.Field {
	f = f.Trimmed()
	qty, _ := forms.ParseQuantity(f.Quantity)
	return []apiclient.Field{
		{Name: "title", Value: f.Title},
		{Name: "category", Value: f.Category},
		{Name: "subcategory", Value: f.Subcategory},
		{Name: "description", Value: f.Description},
		{Name: "price", Value: f.Price},
		{Name: "quantity", Value: strconv.Itoa(qty)},
		{Name: "KeyIngredients", Value: f.KeyIngredients},
	}
}

// Create submits the add product form. images, when empty, defaults to the images staged on
// the page. Nothing is inserted into the local list; the product shows up on the next Load.
func (s *Service) Create(ctx context.Context, sess *session.Session, f forms.ProductForm, images []models.Upload) (forms.Errors, error) {
	p := s.page(sess)
	if len(images) == 0 {
		images = p.stagedUploads()
	}
	if errs := forms.ValidateProduct(f, images); !errs.Valid() {
		return errs, nil
	}
	if !p.guard.Acquire() {
		return nil, utils.ErrBusy
	}
	defer p.guard.Release()

	raw, err := s.api.Multipart(ctx, sess, http.MethodPost, addPath, productFields(f), images)
	if err != nil {
		log.Printf("[products] create %q: %v", f.Title, err)
		return nil, err
	}
	if string(raw) == "null" {
		return nil, &apiclient.Error{Kind: apiclient.KindDecode, Message: "Empty response from server. Please try again."}
	}

	p.clearStaged()
	var id string
	if patch, err := normalize.ProductPatch(raw); err == nil {
		var created models.Product
		if json.Unmarshal(patch, &created) == nil {
			id = created.Key()
		}
	}
	s.audit.Record(ctx, audit.Entry{
		Action:   audit.ProductCreated,
		Entity:   "product",
		EntityID: id,
		UserID:   sess.UserID,
		Detail:   bson.M{"title": f.Trimmed().Title, "images": len(images)},
	})
	return nil, nil
}

// formPatch is the local overlay used when the update response does not echo the product.
func formPatch(f forms.ProductForm) json.RawMessage {
	f = f.Trimmed()
	price, _ := forms.ParsePrice(f.Price)
	qty, _ := forms.ParseQuantity(f.Quantity)
	data, _ := json.Marshal(map[string]any{
		"title":          f.Title,
		"category":       f.Category,
		"subcategory":    f.Subcategory,
		"description":    f.Description,
		"price":          price,
		"quantity":       qty,
		"KeyIngredients": f.KeyIngredients,
	})
	return data
}

// Update submits the edit form for the product matching id and merges the server's copy into
// the local list in place.
func (s *Service) Update(ctx context.Context, sess *session.Session, id string, f forms.ProductForm, images []models.Upload) (models.Product, forms.Errors, error) {
	if errs := forms.ValidateProductEdit(f, images); !errs.Valid() {
		return models.Product{}, errs, nil
	}
	p := s.page(sess)
	if !p.guard.Acquire() {
		return models.Product{}, nil, utils.ErrBusy
	}
	defer p.guard.Release()

	raw, err := s.api.Multipart(ctx, sess, http.MethodPut, updatePath+id, productFields(f), images)
	if err != nil {
		log.Printf("[products] update %s: %v", id, err)
		return models.Product{}, nil, err
	}
	patch, perr := normalize.ProductPatch(raw)
	if perr != nil {
		log.Printf("[products] update %s: response carries no product, using submitted values", id)
		patch = formPatch(f)
	}

	now := s.now()
	var updated models.Product
	p.mu.Lock()
	list, ok := reconcile.Replace(p.products, id, func(old models.Product) models.Product {
		merged, err := reconcile.Overlay(old, patch)
		if err != nil {
			log.Printf("[products] overlay %s: %v", id, err)
			merged, _ = reconcile.Overlay(old, formPatch(f))
		}
		merged.ID, merged.AltID = old.ID, old.AltID
		merged.LastUpdated = now
		updated = merged
		return merged
	})
	p.products = list
	p.mu.Unlock()
	if !ok {
		log.Printf("[products] update %s: not in local list", id)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:   audit.ProductUpdated,
		Entity:   "product",
		EntityID: id,
		UserID:   sess.UserID,
		Detail:   bson.M{"title": f.Trimmed().Title, "imagesReplaced": len(images) > 0},
	})
	return updated, nil, nil
}

// Delete removes the product upstream, then locally. The local list is untouched on failure.
func (s *Service) Delete(ctx context.Context, sess *session.Session, id string) error {
	if id == "" {
		return &apiclient.Error{Kind: apiclient.KindValidation, Status: http.StatusBadRequest, Message: "Product id is required"}
	}
	p := s.page(sess)
	if !p.guard.Acquire() {
		return utils.ErrBusy
	}
	defer p.guard.Release()

	if _, err := s.api.Do(ctx, sess, http.MethodDelete, deletePath+id, nil); err != nil {
		log.Printf("[products] delete %s: %v", id, err)
		return err
	}

	p.mu.Lock()
	p.products = reconcile.Remove(p.products, id)
	p.mu.Unlock()

	s.audit.Record(ctx, audit.Entry{
		Action:   audit.ProductDeleted,
		Entity:   "product",
		EntityID: id,
		UserID:   sess.UserID,
	})
	return nil
}

// ErrUnknownProduct is returned by carousel moves for ids not in the local list.
var ErrUnknownProduct = errors.New("product not found")

// Step moves the carousel of product id forward (delta > 0) or back and returns the new index.
func (s *Service) Step(sess *session.Session, id string, delta int) (int, error) {
	p := s.page(sess)
	p.mu.Lock()
	defer p.mu.Unlock()
	i := reconcile.Index(p.products, id)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}
	prod := p.products[i]
	if delta >= 0 {
		return p.carousel.Next(prod.Key(), len(prod.Images)), nil
	}
	return p.carousel.Prev(prod.Key(), len(prod.Images)), nil
}

// Products returns a copy of the local list.
func (s *Service) Products(sess *session.Session) []models.Product {
	p := s.page(sess)
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Product{}, p.products...)
}
