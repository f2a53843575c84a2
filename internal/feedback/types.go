package feedback

import (
	"github.com/lmcgowan/pricelab/internal/pricing"
	"github.com/lmcgowan/pricelab/internal/profile"
)

const notAvailable = "N/A"

// Request is everything the builder serializes for the completion service:
// the profile as the user filled it in plus the metrics the pricing models
// computed from it.
type Request struct {
	Profile        profile.PricingProfile
	Price          float64
	Costs          pricing.CostBreakdown
	Recommendation *pricing.Recommendation
	SampleSize     int
}

// AspectShare is a top-2 breakdown with an Other bucket. The request asks
// for pct1+pct2+other_pct = 100; the normalizer repairs the sum if the
// model drifts.
type AspectShare struct {
	Aspect1  string `json:"aspect1"`
	Pct1     int    `json:"pct1"`
	Aspect2  string `json:"aspect2"`
	Pct2     int    `json:"pct2"`
	OtherPct int    `json:"other_pct"`
}

// Result is the fully-defaulted view of a feedback response. Every field
// has an explicit fallback so a partially conforming response still
// renders: strings default to "N/A", lists to empty, counts to zero.
type Result struct {
	CompetitiveSummary string         `json:"competitive_summary"`
	BuyPercentage      float64        `json:"buy_percentage"`
	Sentiment          string         `json:"sentiment"`
	Comments           []string       `json:"comments"`
	BestAspects        AspectShare    `json:"best_aspects"`
	WorstAspects       AspectShare    `json:"worst_aspects"`
	StarRatings        map[string]int `json:"star_ratings"`
	SampleSize         int            `json:"sample_size"`
}

// EstimatedBuyers converts the buy percentage into a headcount out of the
// requested sample size.
func (r Result) EstimatedBuyers() int {
	return int(r.BuyPercentage * float64(r.SampleSize) / 100.0)
}
