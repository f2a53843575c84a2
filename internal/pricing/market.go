package pricing

// Heuristic weighting constants carried over from the original tool.
// They are design choices, not fitted values.
const (
	fallbackMarkup  = 1.3
	sweetLowFactor  = 0.95
	sweetHighFactor = 1.10
	wtpWeight       = 0.6
	valueWeight     = 0.4
)

// RecommendMarket derives a recommended price from competitor price
// statistics. Competitors with a zero price are treated as not priced
// (the form allows adding a competitor before filling in its price).
func RecommendMarket(in MarketInputs) Recommendation {
	priced := make([]float64, 0, len(in.Competitors))
	for _, c := range in.Competitors {
		if c.Price > 0 {
			priced = append(priced, c.Price)
		}
	}

	rec := Recommendation{}
	if len(priced) == 0 {
		rec.UsedFallback = true
		rec.Recommended = maxFloat(in.MinProfitablePrice, in.UnitCost*fallbackMarkup)
	} else {
		low, high, sum := priced[0], priced[0], 0.0
		for _, p := range priced {
			if p < low {
				low = p
			}
			if p > high {
				high = p
			}
			sum += p
		}
		rec.CompetitorLow = RoundCents(low)
		rec.CompetitorHigh = RoundCents(high)
		rec.CompetitorAvg = RoundCents(sum / float64(len(priced)))
		rec.Recommended = maxFloat(in.MinProfitablePrice, rec.CompetitorAvg)
	}

	rec.Recommended = RoundCents(rec.Recommended)
	rec.SweetSpotLow = RoundCents(maxFloat(in.MinProfitablePrice, rec.Recommended*sweetLowFactor))
	rec.SweetSpotHigh = RoundCents(rec.Recommended * sweetHighFactor)
	return rec
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
