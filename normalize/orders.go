package normalize

import (
	"encoding/json"
	"errors"
	"time"

	"agroadmin/models"
)

const notAvailable = "N/A"

type rawPerson struct {
	Name    text `json:"name"`
	Email   text `json:"email"`
	Phone   text `json:"phone"`
	Address text `json:"address"`
}

type rawItemProduct struct {
	ID     text       `json:"_id"`
	AltID  text       `json:"id"`
	Name   text       `json:"name"`
	Title  text       `json:"title"`
	Price  number     `json:"price"`
	Images stringList `json:"images"`
	Image  text       `json:"image"`
}

type rawLineItem struct {
	Product     json.RawMessage `json:"product"`
	ProductID   text            `json:"productId"`
	Title       text            `json:"title"`
	Name        text            `json:"name"`
	ProductName text            `json:"productName"`
	Quantity    number          `json:"quantity"`
	Price       number          `json:"price"`
	Images      stringList      `json:"images"`
	Image       text            `json:"image"`
}

type rawOrder struct {
	ID              text            `json:"_id"`
	OrderID         text            `json:"orderId"`
	UserName        text            `json:"userName"`
	Name            text            `json:"name"`
	CustomerName    text            `json:"customerName"`
	UserEmail       text            `json:"userEmail"`
	Email           text            `json:"email"`
	CustomerEmail   text            `json:"customerEmail"`
	PhoneNumber     text            `json:"phoneNumber"`
	Phone           text            `json:"phone"`
	CustomerPhone   text            `json:"customerPhone"`
	ShippingAddress text            `json:"shippingAddress"`
	Address         text            `json:"address"`
	User            *rawPerson      `json:"user"`
	Items           json.RawMessage `json:"items"`
	Products        json.RawMessage `json:"products"`
	TotalAmount     number          `json:"totalAmount"`
	OrderStatus     text            `json:"orderStatus"`
	Status          text            `json:"status"`
	PaymentStatus   text            `json:"paymentStatus"`
	Payment         *struct {
		Status text `json:"status"`
	} `json:"payment"`
	OrderDate           stamp `json:"orderDate"`
	CreatedAt           stamp `json:"createdAt"`
	UpdatedAt           stamp `json:"updatedAt"`
	ExpectedDelivery    text  `json:"expectedDelivery"`
	Notes               text  `json:"notes"`
	SpecialInstructions text  `json:"specialInstructions"`
}

func decodeLineItem(rec json.RawMessage) (models.LineItem, error) {
	if !isObject(rec) {
		return models.LineItem{}, errors.New("line item is not an object")
	}
	var ri rawLineItem
	if err := json.Unmarshal(rec, &ri); err != nil {
		return models.LineItem{}, err
	}

	var prod rawItemProduct
	productRef := ri.ProductID
	switch {
	case isObject(ri.Product):
		if err := json.Unmarshal(ri.Product, &prod); err != nil {
			return models.LineItem{}, err
		}
		if productRef == "" {
			productRef = text(firstNonEmpty(prod.ID, prod.AltID))
		}
	case !isNull(ri.Product):
		var ref text
		if err := json.Unmarshal(ri.Product, &ref); err == nil && productRef == "" {
			productRef = ref
		}
	}

	item := models.LineItem{
		ProductID: string(productRef),
		Title:     firstNonEmpty(ri.Title, ri.ProductName, ri.Name, prod.Title, prod.Name),
		Quantity:  int(ri.Quantity),
		Price:     float64(ri.Price),
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.Price == 0 {
		item.Price = float64(prod.Price)
	}
	switch {
	case len(prod.Images) > 0:
		item.Images = []string(prod.Images)
	case len(ri.Images) > 0:
		item.Images = []string(ri.Images)
	case prod.Image != "":
		item.Images = []string{string(prod.Image)}
	case ri.Image != "":
		item.Images = []string{string(ri.Image)}
	default:
		item.Images = []string{}
	}
	return item, nil
}

func decodeLineItems(raw json.RawMessage) []models.LineItem {
	items := []models.LineItem{}
	if !isArray(raw) {
		return items
	}
	var recs []json.RawMessage
	if err := json.Unmarshal(raw, &recs); err != nil {
		return items
	}
	for _, rec := range recs {
		if it, err := decodeLineItem(rec); err == nil {
			items = append(items, it)
		}
	}
	return items
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// orderDecoder builds an order decoder; now stamps orders the server sent without any date.
func orderDecoder(now func() time.Time) func(json.RawMessage) (models.Order, error) {
	return func(rec json.RawMessage) (models.Order, error) {
		if !isObject(rec) {
			return models.Order{}, errors.New("order record is not an object")
		}
		var ro rawOrder
		if err := json.Unmarshal(rec, &ro); err != nil {
			return models.Order{}, err
		}
		user := rawPerson{}
		if ro.User != nil {
			user = *ro.User
		}

		itemsRaw := ro.Items
		if !isArray(itemsRaw) {
			itemsRaw = ro.Products
		}

		o := models.Order{
			ID:                  string(ro.ID),
			OrderID:             firstNonEmpty(ro.OrderID, ro.ID),
			CustomerName:        orDefault(firstNonEmpty(ro.UserName, ro.Name, ro.CustomerName, user.Name), notAvailable),
			CustomerEmail:       orDefault(firstNonEmpty(ro.UserEmail, ro.Email, ro.CustomerEmail, user.Email), notAvailable),
			CustomerPhone:       orDefault(firstNonEmpty(ro.PhoneNumber, ro.Phone, ro.CustomerPhone, user.Phone), notAvailable),
			ShippingAddress:     orDefault(firstNonEmpty(ro.ShippingAddress, ro.Address, user.Address), notAvailable),
			Items:               decodeLineItems(itemsRaw),
			TotalAmount:         float64(ro.TotalAmount),
			OrderStatus:         models.OrderStatus(orDefault(firstNonEmpty(ro.OrderStatus, ro.Status), string(models.StatusPending))),
			UpdatedAt:           ro.UpdatedAt.Time(),
			ExpectedDelivery:    string(ro.ExpectedDelivery),
			Notes:               string(ro.Notes),
			SpecialInstructions: string(ro.SpecialInstructions),
		}
		payment := ro.PaymentStatus
		if payment == "" && ro.Payment != nil {
			payment = ro.Payment.Status
		}
		o.PaymentStatus = orDefault(string(payment), string(models.StatusPending))

		switch {
		case !ro.OrderDate.Time().IsZero():
			o.OrderDate = ro.OrderDate.Time()
		case !ro.CreatedAt.Time().IsZero():
			o.OrderDate = ro.CreatedAt.Time()
		default:
			o.OrderDate = now()
		}
		if o.TotalAmount == 0 {
			o.TotalAmount = o.ItemsTotal()
		}
		return o, nil
	}
}

// Orders decodes the order list endpoint.
func Orders(raw []byte) ([]models.Order, error) {
	return OrdersAt(raw, time.Now)
}

// OrdersAt is Orders with an explicit clock for undated orders.
func OrdersAt(raw []byte, now func() time.Time) ([]models.Order, error) {
	return decodeAll(raw, orderDecoder(now), "orders", "data")
}
