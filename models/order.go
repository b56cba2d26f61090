package models

import "time"

// OrderStatus is the fulfilment state of an order. Any status may follow any other.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists the statuses offered to the admin, in display order.
var OrderStatuses = []OrderStatus{StatusPending, StatusShipped, StatusDelivered, StatusCancelled}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// LineItem is a single product row inside an order.
type LineItem struct {
	ProductID string   `json:"productId" bson:"productId"`
	Title     string   `json:"title" bson:"title"`
	Quantity  int      `json:"quantity" bson:"quantity"`
	Price     float64  `json:"price" bson:"price"` // unit price
	Images    []string `json:"images" bson:"images"`
}

// Order represents a customer order as listed on the admin orders page.
type Order struct {
	ID                  string      `json:"_id,omitempty" bson:"_id,omitempty"`
	OrderID             string      `json:"orderId" bson:"orderId"`
	CustomerName        string      `json:"customerName" bson:"customerName"`
	CustomerEmail       string      `json:"customerEmail" bson:"customerEmail"`
	CustomerPhone       string      `json:"customerPhone" bson:"customerPhone"`
	ShippingAddress     string      `json:"shippingAddress" bson:"shippingAddress"`
	Items               []LineItem  `json:"items" bson:"items"`
	TotalAmount         float64     `json:"totalAmount" bson:"totalAmount"`
	OrderStatus         OrderStatus `json:"orderStatus" bson:"orderStatus"`
	PaymentStatus       string      `json:"paymentStatus" bson:"paymentStatus"`
	OrderDate           time.Time   `json:"orderDate" bson:"orderDate"`
	UpdatedAt           time.Time   `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	ExpectedDelivery    string      `json:"expectedDelivery,omitempty" bson:"expectedDelivery,omitempty"`
	Notes               string      `json:"notes,omitempty" bson:"notes,omitempty"`
	SpecialInstructions string      `json:"specialInstructions,omitempty" bson:"specialInstructions,omitempty"`
}

// Keys returns the database id and the public order id.
func (o Order) Keys() (string, string) {
	return o.ID, o.OrderID
}

// ShortID is the last six characters of the order id, as printed on slips.
func (o Order) ShortID() string {
	id := o.OrderID
	if id == "" {
		id = o.ID
	}
	if id == "" {
		return "N/A"
	}
	if len(id) > 6 {
		return id[len(id)-6:]
	}
	return id
}

// ItemsTotal sums price × quantity over the line items.
func (o Order) ItemsTotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}
