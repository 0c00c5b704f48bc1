package needs

import (
	"github.com/shopspring/decimal"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
)

// ItemLine is one requested item on a submission: what it is, what it costs,
// and optionally where to buy it.
type ItemLine struct {
	Name string
	Cost string
	Link string
}

// CreateParams is the public need submission payload. Description and summary
// are not accepted directly; they are composed from the structured blocks.
type CreateParams struct {
	Title            string
	Category         string
	Story            string
	LongTermDream    string
	TriedAlready     string
	Deadline         string
	Urgency          string
	Items            []ItemLine
	AmountNeeded     decimal.Decimal
	BeneficiaryName  string
	BeneficiaryEmail string
	City             string
	Region           string

	PayTo                     string
	InstitutionName           string
	InstitutionType           string
	InstitutionPaymentLink    string
	PreferDirectToInstitution bool
	VerificationNote          string
}

// ListParams configures the public and admin need listings.
type ListParams struct {
	Status   string
	Category string
	Limit    int
	Cursor   string
}

// ListResult wraps returned needs and the cursor for the next page.
type ListResult struct {
	Items  []NeedSummary `json:"items"`
	Cursor string        `json:"cursor"`
}

// NeedSummary is the listing projection: enough to render a card without
// donor-facing internals.
type NeedSummary struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Summary       string          `json:"summary"`
	Category      string          `json:"category"`
	Status        string          `json:"status"`
	AmountNeeded  decimal.Decimal `json:"amount_needed"`
	AmountRaised  decimal.Decimal `json:"amount_raised"`
	Remaining     decimal.Decimal `json:"remaining"`
	PercentFunded int             `json:"percent_funded"`
	City          *string         `json:"city,omitempty"`
	Region        *string         `json:"region,omitempty"`
}

func summarize(need models.Need) NeedSummary {
	return NeedSummary{
		ID:            need.ID,
		Title:         need.Title,
		Summary:       need.Summary,
		Category:      need.Category.String(),
		Status:        need.Status.String(),
		AmountNeeded:  need.AmountNeeded,
		AmountRaised:  need.AmountRaised,
		Remaining:     need.Remaining(),
		PercentFunded: need.PercentFunded(),
		City:          need.City,
		Region:        need.Region,
	}
}

// Detail pairs the need row with its attachments for the detail page.
type Detail struct {
	Need    models.Need         `json:"need"`
	Photos  []models.NeedPhoto  `json:"photos"`
	Updates []models.NeedUpdate `json:"updates"`
}

// PaymentRouting tells a donor where the offsite gift should actually go
// after the platform-support checkout settles.
type PaymentRouting struct {
	NeedID                    int64           `json:"need_id"`
	Title                     string          `json:"title"`
	Remaining                 decimal.Decimal `json:"remaining"`
	PayTo                     *string         `json:"pay_to,omitempty"`
	InstitutionName           *string         `json:"institution_name,omitempty"`
	InstitutionType           *string         `json:"institution_type,omitempty"`
	InstitutionPaymentLink    *string         `json:"institution_payment_link,omitempty"`
	PreferDirectToInstitution bool            `json:"prefer_direct_to_institution"`
}
