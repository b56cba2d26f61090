package models

// DeliveryCharge holds the flat shipping rates. There is only ever one.
type DeliveryCharge struct {
	Air  float64 `json:"aircharge" bson:"aircharge"`
	Ship float64 `json:"shipcharge" bson:"shipcharge"`
}
