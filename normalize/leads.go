package normalize

import (
	"encoding/json"
	"errors"

	"agroadmin/models"
)

type rawLead struct {
	ID                text `json:"_id"`
	FullName          text `json:"fullName"`
	CompanyName       text `json:"companyName"`
	CompanyEmail      text `json:"companyEmail"`
	CompanyAddress    text `json:"companyAddress"`
	Country           text `json:"country"`
	Code              text `json:"code"`
	Number            text `json:"number"`
	WebsiteLink       text `json:"websiteLink"`
	SalesDetails      text `json:"SalesDetails"`
	SalesDetailsLower text `json:"salesDetails"`
	Requirements      text `json:"requirements"`
	AdditionalMessage text `json:"additionalMessage"`
}

func leadDecoder(kind models.LeadKind) func(json.RawMessage) (models.Lead, error) {
	return func(rec json.RawMessage) (models.Lead, error) {
		if !isObject(rec) {
			return models.Lead{}, errors.New("lead record is not an object")
		}
		var rl rawLead
		if err := json.Unmarshal(rec, &rl); err != nil {
			return models.Lead{}, err
		}
		details := string(rl.Requirements)
		if kind == models.LeadSales {
			details = firstNonEmpty(rl.SalesDetails, rl.SalesDetailsLower)
		}
		return models.Lead{
			Kind:              kind,
			ID:                string(rl.ID),
			FullName:          string(rl.FullName),
			CompanyName:       string(rl.CompanyName),
			CompanyEmail:      string(rl.CompanyEmail),
			CompanyAddress:    string(rl.CompanyAddress),
			Country:           string(rl.Country),
			Code:              string(rl.Code),
			Number:            string(rl.Number),
			WebsiteLink:       string(rl.WebsiteLink),
			Details:           details,
			AdditionalMessage: string(rl.AdditionalMessage),
		}, nil
	}
}

// Sales decodes the sales enquiry endpoint. The store spells its wrapper key "salse".
func Sales(raw []byte) ([]models.Lead, error) {
	return decodeAll(raw, leadDecoder(models.LeadSales), "salse", "sales", "data")
}

// Requirements decodes the requirement submission endpoint.
func Requirements(raw []byte) ([]models.Lead, error) {
	return decodeAll(raw, leadDecoder(models.LeadRequirements), "requirements", "data")
}
