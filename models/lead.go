package models

// LeadKind tells sales enquiries and requirement submissions apart.
type LeadKind string

const (
	LeadSales        LeadKind = "sales"
	LeadRequirements LeadKind = "requirements"
)

// Lead is an inbound contact form submission. Admins only read these.
type Lead struct {
	Kind              LeadKind `json:"type"`
	ID                string   `json:"_id"`
	FullName          string   `json:"fullName"`
	CompanyName       string   `json:"companyName"`
	CompanyEmail      string   `json:"companyEmail"`
	CompanyAddress    string   `json:"companyAddress"`
	Country           string   `json:"country"`
	Code              string   `json:"code"`
	Number            string   `json:"number"`
	WebsiteLink       string   `json:"websiteLink"`
	Details           string   `json:"details"`
	AdditionalMessage string   `json:"additionalMessage"`
}
