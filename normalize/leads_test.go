package normalize

import (
	"testing"

	"agroadmin/models"
)

func TestSalesAndRequirements(t *testing.T) {
	sales, err := Sales([]byte(`{"success":true,"salse":[{"_id":"s1","fullName":"Meera","SalesDetails":"200kg neem","number":9876}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sales) != 1 || sales[0].Kind != models.LeadSales || sales[0].Details != "200kg neem" || sales[0].Number != "9876" {
		t.Fatalf("unexpected sales decode: %+v", sales)
	}

	reqs, err := Requirements([]byte(`{"requirements":[{"_id":"r1","companyName":"Agro Co","requirements":"bulk tulsi"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reqs) != 1 || reqs[0].Kind != models.LeadRequirements || reqs[0].Details != "bulk tulsi" {
		t.Fatalf("unexpected requirements decode: %+v", reqs)
	}
}

func TestDeliveryCharge(t *testing.T) {
	c, err := DeliveryCharge([]byte(`{"delcharge":[{"aircharge":"120.5","shipcharge":40}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Air != 120.5 || c.Ship != 40 {
		t.Fatalf("unexpected charges: %+v", c)
	}

	c, err = DeliveryCharge([]byte(`{"delcharge":[]}`))
	if err != nil || c != (models.DeliveryCharge{}) {
		t.Fatalf("expected zero charges for empty list, got %+v (%v)", c, err)
	}

	if _, err := DeliveryCharge([]byte(`"nope"`)); err == nil {
		t.Fatalf("expected error for scalar payload")
	}
}
