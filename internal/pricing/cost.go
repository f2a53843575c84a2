package pricing

import "math"

// ComputeCosts aggregates the per-unit cost components and marks the total
// up by the target margin. Platform fees depend on the price and the price
// depends on the fee; instead of solving that fixed point we take a two-pass
// first-order estimate: price the product without fees, charge the
// percentage fee against that preliminary price, then reprice with the fee
// folded into the unit cost. The small residual is accepted.
func ComputeCosts(in CostInputs) CostBreakdown {
	out := CostBreakdown{}

	for _, c := range in.Materials {
		if c.UnitCost > 0 {
			out.MaterialsCost += c.UnitCost
		}
	}
	for _, e := range in.Equipment {
		out.EquipmentAmortization += e.PerUnit()
	}

	out.LaborCost = in.LaborCostOverride
	if out.LaborCost <= 0 {
		out.LaborCost = in.LaborMinutes / 60.0 * in.HourlyWage
	}

	out.VariableUnitCost = out.MaterialsCost +
		in.PackagingCost +
		out.EquipmentAmortization +
		out.LaborCost +
		in.OtherConversionCost +
		in.ShippingCost +
		in.OtherSellingCost

	if in.ExpectedMonthlyVolume > 0 {
		out.OverheadPerUnit = in.MonthlyOverhead / float64(in.ExpectedMonthlyVolume)
	}

	markup := 1 + in.MarginPct/100.0
	if in.PlatformFeePct > 0 || in.PlatformFeeFixed > 0 {
		preliminary := (out.VariableUnitCost + out.OverheadPerUnit) * markup
		out.PlatformFeesPerUnit = preliminary*in.PlatformFeePct/100.0 + in.PlatformFeeFixed
	}

	out.TotalUnitCost = out.VariableUnitCost + out.OverheadPerUnit + out.PlatformFeesPerUnit
	out.SuggestedPrice = out.TotalUnitCost * markup

	contribution := out.SuggestedPrice - (out.VariableUnitCost + out.PlatformFeesPerUnit)
	if contribution > 0 {
		out.BreakevenUnits = in.MonthlyOverhead / contribution
		out.BreakevenOK = true
	}

	out.MaterialsCost = RoundCents(out.MaterialsCost)
	out.EquipmentAmortization = RoundCents(out.EquipmentAmortization)
	out.LaborCost = RoundCents(out.LaborCost)
	out.VariableUnitCost = RoundCents(out.VariableUnitCost)
	out.OverheadPerUnit = RoundCents(out.OverheadPerUnit)
	out.PlatformFeesPerUnit = RoundCents(out.PlatformFeesPerUnit)
	out.TotalUnitCost = RoundCents(out.TotalUnitCost)
	out.SuggestedPrice = RoundCents(out.SuggestedPrice)
	return out
}

// RoundCents rounds to 2 decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
