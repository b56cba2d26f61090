package forms

import "strings"

// ChargeForm is the raw text of the delivery charge form.
type ChargeForm struct {
	Air  string `json:"air"`
	Ship string `json:"ship"`
}

type chargeInput struct {
	Air  float64 `form:"air" validate:"gte=0"`
	Ship float64 `form:"ship" validate:"gte=0"`
}

// ValidateCharges checks both rates are present, numeric and not negative. On success the
// parsed rates are returned.
func ValidateCharges(f ChargeForm) (air, ship float64, errs Errors) {
	errs = Errors{}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"air", f.Air, &air},
		{"ship", f.Ship, &ship},
	}
	for _, fld := range fields {
		raw := strings.TrimSpace(fld.raw)
		if raw == "" {
			errs.Set(fld.name, "Please fill in both air and ship charges")
			continue
		}
		v, ok := ParsePrice(raw)
		if !ok {
			errs.Set(fld.name, "Please enter a valid number")
			continue
		}
		*fld.dst = v
	}
	check(chargeInput{Air: air, Ship: ship}, errs, map[string]string{
		"air":  "Charges cannot be negative",
		"ship": "Charges cannot be negative",
	})
	return air, ship, errs
}
