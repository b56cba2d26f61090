package models

import "time"

// Product is an inventory item as the admin console sees it.
type Product struct {
	ID             string    `json:"_id,omitempty" bson:"_id,omitempty"`
	AltID          string    `json:"id,omitempty" bson:"id,omitempty"` // some endpoints only send "id"
	Title          string    `json:"title" bson:"title"`
	Category       string    `json:"category" bson:"category"`
	Subcategory    string    `json:"subcategory" bson:"subcategory"`
	Price          float64   `json:"price" bson:"price"`
	Quantity       int       `json:"quantity" bson:"quantity"`
	Description    string    `json:"description" bson:"description"`
	KeyIngredients string    `json:"KeyIngredients" bson:"KeyIngredients"`
	Images         []string  `json:"images" bson:"images"`
	LastUpdated    time.Time `json:"lastUpdated,omitempty" bson:"-"` // local only
}

// Keys returns both identifiers the store may have used for this product.
func (p Product) Keys() (string, string) {
	return p.ID, p.AltID
}

// Key is the identifier used in URLs and carousel state.
func (p Product) Key() string {
	if p.AltID != "" {
		return p.AltID
	}
	return p.ID
}

// Upload is an image file picked by the admin, held in memory until it is forwarded.
type Upload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// Size is the file size in bytes.
func (u Upload) Size() int64 {
	return int64(len(u.Data))
}
