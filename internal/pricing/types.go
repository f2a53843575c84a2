package pricing

type Mode string

const (
	ModeCostPlus    Mode = "cost_plus"
	ModeMarketBased Mode = "market_based"
	ModeValueBased  Mode = "value_based"
)

func ValidMode(m Mode) bool {
	switch m {
	case ModeCostPlus, ModeMarketBased, ModeValueBased:
		return true
	default:
		return false
	}
}

// CostComponent is a flat per-unit cost line (materials, packaging, ...).
type CostComponent struct {
	Name     string  `json:"name"`
	UnitCost float64 `json:"unit_cost"`
}

// EquipmentItem is a one-time tool cost spread over its expected
// total production capacity.
type EquipmentItem struct {
	Name          string  `json:"name"`
	TotalCost     float64 `json:"total_cost"`
	CapacityUnits int     `json:"capacity_units"`
}

// PerUnit returns the amortized per-unit share of the equipment cost.
// A non-positive capacity yields 0 rather than a division error; that is
// an expected state of a partially filled form.
func (e EquipmentItem) PerUnit() float64 {
	if e.CapacityUnits <= 0 {
		return 0
	}
	return e.TotalCost / float64(e.CapacityUnits)
}

type Competitor struct {
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Details string  `json:"details"`
}

// CostInputs is the immutable record the cost model computes over.
// All monetary fields are per-unit USD unless the name says otherwise.
type CostInputs struct {
	Materials []CostComponent `json:"materials"`
	Equipment []EquipmentItem `json:"equipment"`

	PackagingCost float64 `json:"packaging_cost"`
	ShippingCost  float64 `json:"shipping_cost"`

	// Labor is either minutes at an hourly wage or a direct per-unit override.
	LaborMinutes      float64 `json:"labor_minutes"`
	HourlyWage        float64 `json:"hourly_wage"`
	LaborCostOverride float64 `json:"labor_cost_override,omitempty"`

	OtherConversionCost float64 `json:"other_conversion_cost"`
	OtherSellingCost    float64 `json:"other_selling_cost"`

	// Marketplace fees: percentage of the sale price plus a fixed amount.
	PlatformFeePct   float64 `json:"platform_fee_pct"`
	PlatformFeeFixed float64 `json:"platform_fee_fixed"`

	MonthlyOverhead       float64 `json:"monthly_overhead"`
	ExpectedMonthlyVolume int     `json:"expected_monthly_volume"`

	MarginPct float64 `json:"margin_pct"`
}

// CostBreakdown is the cost model output. BreakevenOK is false when the
// contribution margin is non-positive and breakeven is not applicable.
type CostBreakdown struct {
	MaterialsCost         float64 `json:"materials_cost"`
	EquipmentAmortization float64 `json:"equipment_amortization"`
	LaborCost             float64 `json:"labor_cost"`
	VariableUnitCost      float64 `json:"variable_unit_cost"`
	OverheadPerUnit       float64 `json:"overhead_per_unit"`
	PlatformFeesPerUnit   float64 `json:"platform_fees_per_unit"`
	TotalUnitCost         float64 `json:"total_unit_cost"`
	SuggestedPrice        float64 `json:"suggested_price"`
	BreakevenUnits        float64 `json:"breakeven_units_per_month"`
	BreakevenOK           bool    `json:"breakeven_ok"`
}

type MarketInputs struct {
	Competitors        []Competitor `json:"competitors"`
	UnitCost           float64      `json:"unit_cost"`
	MinProfitablePrice float64      `json:"min_profitable_price"`
}

type ValueInputs struct {
	AlternativeCosts   []float64 `json:"alternative_costs"`
	OwnUnitCost        float64   `json:"own_unit_cost"`
	MoneySavedPerUse   float64   `json:"money_saved_per_use"`
	MinutesSavedPerUse float64   `json:"minutes_saved_per_use"`
	HourlyValueOfTime  float64   `json:"hourly_value_of_time"`

	TypicalWillingnessToPay float64 `json:"typical_willingness_to_pay"`
	MinExpectedPrice        float64 `json:"min_expected_price"`
	MaxAcceptablePrice      float64 `json:"max_acceptable_price"`
	MinProfitablePrice      float64 `json:"min_profitable_price"`
}

// Recommendation is the market/value model output. The sweet spot is the
// band around the recommended price considered acceptable.
type Recommendation struct {
	CompetitorLow  float64 `json:"competitor_low,omitempty"`
	CompetitorAvg  float64 `json:"competitor_avg,omitempty"`
	CompetitorHigh float64 `json:"competitor_high,omitempty"`
	EstimatedValue float64 `json:"estimated_value,omitempty"`
	Recommended    float64 `json:"recommended"`
	SweetSpotLow   float64 `json:"sweet_spot_low"`
	SweetSpotHigh  float64 `json:"sweet_spot_high"`
	UsedFallback   bool    `json:"used_fallback,omitempty"`
}
