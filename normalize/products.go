package normalize

import (
	"encoding/json"
	"errors"

	"agroadmin/models"
)

type rawProduct struct {
	ID                  text       `json:"_id"`
	AltID               text       `json:"id"`
	Title               text       `json:"title"`
	Name                text       `json:"name"`
	Category            text       `json:"category"`
	Subcategory         text       `json:"subcategory"`
	Price               number     `json:"price"`
	Quantity            number     `json:"quantity"`
	Description         text       `json:"description"`
	KeyIngredients      text       `json:"KeyIngredients"`
	KeyIngredientsLower text       `json:"keyIngredients"`
	Images              stringList `json:"images"`
	Image               text       `json:"image"`
}

func (rp rawProduct) images() []string {
	if len(rp.Images) > 0 {
		return []string(rp.Images)
	}
	if rp.Image != "" {
		return []string{string(rp.Image)}
	}
	return []string{}
}

func decodeProduct(rec json.RawMessage) (models.Product, error) {
	if !isObject(rec) {
		return models.Product{}, errors.New("product record is not an object")
	}
	var rp rawProduct
	if err := json.Unmarshal(rec, &rp); err != nil {
		return models.Product{}, err
	}
	if rp.ID == "" && rp.AltID == "" {
		return models.Product{}, errors.New("product record has no id")
	}
	return models.Product{
		ID:             string(rp.ID),
		AltID:          string(rp.AltID),
		Title:          firstNonEmpty(rp.Title, rp.Name),
		Category:       string(rp.Category),
		Subcategory:    string(rp.Subcategory),
		Price:          float64(rp.Price),
		Quantity:       int(rp.Quantity),
		Description:    string(rp.Description),
		KeyIngredients: firstNonEmpty(rp.KeyIngredients, rp.KeyIngredientsLower),
		Images:         rp.images(),
	}, nil
}

// Products decodes the product list endpoint.
func Products(raw []byte) ([]models.Product, error) {
	return decodeAll(raw, decodeProduct, "data", "products")
}

// ProductPatch extracts the product returned by an update call and re-encodes only the
// fields the server actually sent, under the canonical names of models.Product. The result
// is meant to be overlaid on the local copy.
func ProductPatch(raw []byte) (json.RawMessage, error) {
	obj, err := Object(raw, "product", "data")
	if err != nil {
		return nil, err
	}
	fields, err := objectFields(obj)
	if err != nil {
		return nil, &DecodeError{Reason: "malformed product", Err: err}
	}
	var rp rawProduct
	if err := json.Unmarshal(obj, &rp); err != nil {
		return nil, &DecodeError{Reason: "malformed product", Err: err}
	}

	patch := map[string]any{}
	for _, f := range fields {
		switch f.key {
		case "_id":
			patch["_id"] = string(rp.ID)
		case "id":
			patch["id"] = string(rp.AltID)
		case "title":
			patch["title"] = string(rp.Title)
		case "name":
			if _, ok := patch["title"]; !ok && rp.Title == "" {
				patch["title"] = string(rp.Name)
			}
		case "category":
			patch["category"] = string(rp.Category)
		case "subcategory":
			patch["subcategory"] = string(rp.Subcategory)
		case "price":
			patch["price"] = float64(rp.Price)
		case "quantity":
			patch["quantity"] = int(rp.Quantity)
		case "description":
			patch["description"] = string(rp.Description)
		case "KeyIngredients", "keyIngredients":
			patch["KeyIngredients"] = firstNonEmpty(rp.KeyIngredients, rp.KeyIngredientsLower)
		case "images", "image":
			patch["images"] = rp.images()
		}
	}
	if len(patch) == 0 {
		return nil, &DecodeError{Reason: "product carries no known fields"}
	}
	out, err := json.Marshal(patch)
	if err != nil {
		return nil, &DecodeError{Reason: "re-encode product", Err: err}
	}
	return out, nil
}
