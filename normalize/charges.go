package normalize

import (
	"encoding/json"

	"agroadmin/models"
)

type rawCharge struct {
	Air  number `json:"aircharge"`
	Ship number `json:"shipcharge"`
}

// DeliveryCharge decodes the charge endpoint, which answers {"delcharge": [{…}]}. An empty
// list means no rates were configured yet and yields the zero value.
func DeliveryCharge(raw []byte) (models.DeliveryCharge, error) {
	recs, err := List(raw, "delcharge", "data")
	if err != nil {
		if obj, objErr := Object(raw, "delcharge", "data"); objErr == nil {
			return decodeCharge(obj)
		}
		return models.DeliveryCharge{}, err
	}
	if len(recs) == 0 {
		return models.DeliveryCharge{}, nil
	}
	return decodeCharge(recs[0])
}

func decodeCharge(rec json.RawMessage) (models.DeliveryCharge, error) {
	if !isObject(rec) {
		return models.DeliveryCharge{}, &DecodeError{Reason: "charge record is not an object"}
	}
	var rc rawCharge
	if err := json.Unmarshal(rec, &rc); err != nil {
		return models.DeliveryCharge{}, &DecodeError{Reason: "malformed charge", Err: err}
	}
	return models.DeliveryCharge{Air: float64(rc.Air), Ship: float64(rc.Ship)}, nil
}
