package forms

import (
	"fmt"
	"strconv"
	"strings"

	"agroadmin/models"
)

const (
	MaxImages     = 5
	MaxImageBytes = 5 << 20
)

// AllowedImageTypes are the MIME types product images may have.
var AllowedImageTypes = []string{"image/png", "image/jpeg"}

// ProductForm is the raw text of the add/edit product form.
type ProductForm struct {
	Title          string `json:"title"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	Price          string `json:"price"`
	Quantity       string `json:"quantity"`
	Description    string `json:"description"`
	KeyIngredients string `json:"KeyIngredients"`
}

// Trimmed returns f with surrounding whitespace removed from every field.
func (f ProductForm) Trimmed() ProductForm {
	return ProductForm{
		Title:          strings.TrimSpace(f.Title),
		Category:       strings.TrimSpace(f.Category),
		Subcategory:    strings.TrimSpace(f.Subcategory),
		Price:          strings.TrimSpace(f.Price),
		Quantity:       strings.TrimSpace(f.Quantity),
		Description:    strings.TrimSpace(f.Description),
		KeyIngredients: strings.TrimSpace(f.KeyIngredients),
	}
}

type productInput struct {
	Title    string  `form:"title" validate:"required"`
	Category string  `form:"category" validate:"required"`
	Price    float64 `form:"price" validate:"gt=0"`
	Quantity int     `form:"quantity" validate:"gte=0"`
}

type imageInput struct {
	ContentType string `form:"type" validate:"oneof=image/png image/jpeg"`
	Size        int64  `form:"size" validate:"gt=0,lte=5242880"`
}

var productMessages = map[string]string{
	"title":    "Product name is required",
	"category": "Please select a category",
	"price":    "Price must be greater than 0",
	"quantity": "Quantity cannot be negative",
}

// ParsePrice parses a price field. ok is false for empty or non-numeric input.
func ParsePrice(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseQuantity parses a whole-number quantity field.
func ParseQuantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

func validateProductFields(f ProductForm, errs Errors) {
	f = f.Trimmed()
	in := productInput{Title: f.Title, Category: f.Category}

	price, ok := ParsePrice(f.Price)
	if !ok {
		errs.Set("price", productMessages["price"])
	}
	in.Price = price

	qty, ok := ParseQuantity(f.Quantity)
	switch {
	case f.Quantity == "":
		errs.Set("quantity", "Quantity is required")
	case !ok:
		errs.Set("quantity", "Quantity must be a whole number")
	}
	in.Quantity = qty

	check(in, errs, productMessages)
}

func validateImages(images []models.Upload, errs Errors) {
	if len(images) > MaxImages {
		errs.Set("images", fmt.Sprintf("At most %d images are allowed", MaxImages))
		return
	}
	for i, img := range images {
		sub := Errors{}
		check(imageInput{ContentType: img.ContentType, Size: img.Size()}, sub, nil)
		if _, ok := sub["type"]; ok {
			errs.Set("images", fmt.Sprintf("Image %d must be PNG or JPEG", i+1))
			return
		}
		if _, ok := sub["size"]; ok {
			if img.Size() == 0 {
				errs.Set("images", fmt.Sprintf("Image %d is not a valid file", i+1))
			} else {
				errs.Set("images", fmt.Sprintf("Image %d is larger than 5MB", i+1))
			}
			return
		}
	}
}

// ValidateProduct checks the add product form. At least one image is required.
func ValidateProduct(f ProductForm, images []models.Upload) Errors {
	errs := Errors{}
	validateProductFields(f, errs)
	if len(images) == 0 {
		errs.Set("images", "At least one image is required")
	} else {
		validateImages(images, errs)
	}
	return errs
}

// ValidateProductEdit checks the edit product form. Images are optional there: when given
// they replace the existing set wholesale.
func ValidateProductEdit(f ProductForm, images []models.Upload) Errors {
	errs := Errors{}
	validateProductFields(f, errs)
	validateImages(images, errs)
	return errs
}

// AcceptImages adds the acceptable files of picked to current, dropping wrong types and
// oversized files silently, and keeps at most MaxImages.
func AcceptImages(current, picked []models.Upload) []models.Upload {
	out := make([]models.Upload, 0, MaxImages)
	out = append(out, current...)
	for _, img := range picked {
		if validate.Struct(imageInput{ContentType: img.ContentType, Size: img.Size()}) != nil {
			continue
		}
		out = append(out, img)
	}
	if len(out) > MaxImages {
		out = out[:MaxImages]
	}
	return out
}
