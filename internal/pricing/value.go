package pricing

// EstimateValue monetizes what the product saves a customer relative to
// their current alternative: the cost delta plus direct money saved plus
// time saved valued at the stated hourly rate. Floored at zero.
func EstimateValue(in ValueInputs) float64 {
	altAvg := 0.0
	if len(in.AlternativeCosts) > 0 {
		sum := 0.0
		for _, c := range in.AlternativeCosts {
			sum += c
		}
		altAvg = sum / float64(len(in.AlternativeCosts))
	}
	timeValue := in.MinutesSavedPerUse / 60.0 * in.HourlyValueOfTime
	v := (altAvg - in.OwnUnitCost) + in.MoneySavedPerUse + timeValue
	if v < 0 {
		v = 0
	}
	return RoundCents(v)
}

// RecommendValue blends stated willingness-to-pay with the estimated value
// (0.6/0.4), clamped into the profitable-to-acceptable band. The sweet spot
// is additionally floored at the minimum price customers expect to see.
func RecommendValue(in ValueInputs) Recommendation {
	rec := Recommendation{EstimatedValue: EstimateValue(in)}

	blended := wtpWeight*in.TypicalWillingnessToPay + valueWeight*rec.EstimatedValue
	if blended < in.MinProfitablePrice {
		blended = in.MinProfitablePrice
	}
	if in.MaxAcceptablePrice > 0 && blended > in.MaxAcceptablePrice {
		blended = in.MaxAcceptablePrice
	}
	rec.Recommended = RoundCents(blended)

	low := maxFloat(in.MinProfitablePrice, rec.Recommended*sweetLowFactor)
	low = maxFloat(low, in.MinExpectedPrice)
	rec.SweetSpotLow = RoundCents(low)
	rec.SweetSpotHigh = RoundCents(rec.Recommended * sweetHighFactor)
	return rec
}
