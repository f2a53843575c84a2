package profile

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lmcgowan/pricelab/internal/pricing"
)

// PricingProfile is the flat configuration record the form populates.
// It is owned by a single session; nothing mutates it in the background.
// Readers of exported documents must tolerate missing fields, since newer
// versions add fields without a formal migration.
type PricingProfile struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Audience    string       `json:"audience,omitempty"`
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	Mode        pricing.Mode `json:"pricing_mode"`

	Costs       pricing.CostInputs   `json:"costs"`
	Competitors []pricing.Competitor `json:"competitors,omitempty"`
	Value       pricing.ValueInputs  `json:"value,omitzero"`

	// ManualPrice overrides the computed suggestion when the user sets
	// their own price in market-based mode.
	ManualPrice float64 `json:"manual_price,omitempty"`

	CustomerCount int    `json:"customer_count,omitempty"`
	Notes         string `json:"notes,omitempty"`

	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

func (p PricingProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if !pricing.ValidMode(p.Mode) {
		return fmt.Errorf("invalid pricing_mode %q", p.Mode)
	}
	return nil
}

// ExportJSON renders the profile as a downloadable JSON document.
func (p PricingProfile) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// ImportJSON decodes an exported profile. Fields absent from the document
// keep their zero defaults; unknown fields are ignored.
func ImportJSON(blob []byte) (PricingProfile, error) {
	var p PricingProfile
	if err := json.Unmarshal(blob, &p); err != nil {
		return PricingProfile{}, fmt.Errorf("decode profile: %w", err)
	}
	if p.Mode == "" {
		p.Mode = pricing.ModeCostPlus
	}
	if err := p.Validate(); err != nil {
		return PricingProfile{}, err
	}
	return p, nil
}

type RunStatus string

// A run moves Awaiting -> Displayed on success or Awaiting -> Failed on a
// transport or parse failure. Failed is terminal; a retry is a new run
// started by an explicit user action.
const (
	RunAwaiting  RunStatus = "awaiting"
	RunDisplayed RunStatus = "displayed"
	RunFailed    RunStatus = "failed"
)

// Run records one simulation attempt: the profile snapshot it was issued
// against, the price that was quoted to the model, and the outcome.
type Run struct {
	ID          string          `json:"id"`
	ProfileName string          `json:"profile_name"`
	Profile     PricingProfile  `json:"profile"`
	Price       float64         `json:"price"`
	Status      RunStatus       `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	RawText     string          `json:"raw_text,omitempty"`
	ErrorText   string          `json:"error_text,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt time.Time       `json:"completed_at,omitzero"`
}
