package feedback

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ParseError reports an unparseable response. The raw text travels with
// the error so the caller can show it to the user as a diagnostic instead
// of swallowing it.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse feedback response: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// rawResponse is the tolerant decode target: every field optional, every
// absence mapped to an explicit default during merge.
type rawResponse struct {
	CompetitiveSummary *string        `json:"competitive_summary"`
	BuyPercentage      *float64       `json:"buy_percentage"`
	Sentiment          *string        `json:"sentiment"`
	Comments           []string       `json:"comments"`
	BestAspects        *AspectShare   `json:"best_aspects"`
	WorstAspects       *AspectShare   `json:"worst_aspects"`
	StarRatings        map[string]int `json:"star_ratings"`
}

// Normalize strips optional code fences, parses the response, and merges
// it into a fully-defaulted Result. Missing fields never fail; only
// unparseable JSON returns an error, a *ParseError carrying the raw text.
func Normalize(raw string, sampleSize int) (Result, error) {
	clean := stripCodeFences(raw)

	var resp rawResponse
	if err := json.Unmarshal([]byte(clean), &resp); err != nil {
		return Result{}, &ParseError{Raw: raw, Err: err}
	}

	out := Result{
		CompetitiveSummary: notAvailable,
		Sentiment:          notAvailable,
		Comments:           []string{},
		SampleSize:         sampleSize,
	}
	if resp.CompetitiveSummary != nil {
		out.CompetitiveSummary = *resp.CompetitiveSummary
	}
	if resp.BuyPercentage != nil {
		out.BuyPercentage = clampPct(*resp.BuyPercentage)
	}
	if resp.Sentiment != nil {
		out.Sentiment = *resp.Sentiment
	}
	if resp.Comments != nil {
		out.Comments = resp.Comments
	}
	if resp.BestAspects != nil {
		out.BestAspects = repairAspects(*resp.BestAspects)
	}
	if resp.WorstAspects != nil {
		out.WorstAspects = repairAspects(*resp.WorstAspects)
	}
	out.StarRatings = ReconcileStars(resp.StarRatings, sampleSize)
	return out, nil
}

// ReconcileStars repairs a star histogram so its counts sum to exactly
// sampleSize. An all-zero histogram is seeded with a skewed 40/60 split
// across the 4 and 5 star buckets; whatever residual remains after that
// (or after an inconsistent model answer) is absorbed by the 5-star
// bucket. Repair, not rejection: a slightly-off histogram still renders.
func ReconcileStars(ratings map[string]int, sampleSize int) map[string]int {
	out := map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	total := 0
	for star := 1; star <= 5; star++ {
		key := strconv.Itoa(star)
		if v, ok := ratings[key]; ok && v > 0 {
			out[key] = v
			total += v
		}
	}
	if total != sampleSize {
		if total == 0 {
			out["4"] = sampleSize * 40 / 100
			out["5"] = sampleSize * 60 / 100
			total = out["4"] + out["5"]
		}
		out["5"] += sampleSize - total
	}
	return out
}

// repairAspects forces pct1+pct2+other_pct to 100, with the Other bucket
// absorbing the residual (same last-bucket rule as the star histogram).
func repairAspects(a AspectShare) AspectShare {
	if a.Aspect1 == "" {
		a.Aspect1 = notAvailable
	}
	if a.Aspect2 == "" {
		a.Aspect2 = notAvailable
	}
	if sum := a.Pct1 + a.Pct2 + a.OtherPct; sum != 100 {
		a.OtherPct += 100 - sum
	}
	return a
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
