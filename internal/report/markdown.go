package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lmcgowan/pricelab/internal/feedback"
	"github.com/lmcgowan/pricelab/internal/pricing"
	"github.com/lmcgowan/pricelab/internal/profile"
)

// BuildMarkdown renders one simulation run as a markdown report. A failed
// run still gets a report: the error and whatever raw text the model
// returned, so the user can see what went wrong.
func BuildMarkdown(run profile.Run) string {
	var b strings.Builder
	p := run.Profile

	fmt.Fprintf(&b, "# Pricing Simulation Report\n\n")
	fmt.Fprintf(&b, "- Product: %s\n", sanitize(p.Name))
	if p.Description != "" {
		fmt.Fprintf(&b, "- Description: %s\n", sanitize(p.Description))
	}
	if loc := joinLocation(p.City, p.State); loc != "" {
		fmt.Fprintf(&b, "- Market: %s\n", sanitize(loc))
	}
	fmt.Fprintf(&b, "- Pricing mode: `%s`\n", p.Mode)
	fmt.Fprintf(&b, "- Simulated price: %s\n", fmtMoney(run.Price))
	fmt.Fprintf(&b, "- Run: `%s` (%s)\n\n", run.ID, run.Status)

	if run.Status == profile.RunFailed {
		fmt.Fprintf(&b, "## Simulation Failed\n\n")
		fmt.Fprintf(&b, "%s\n\n", sanitize(run.ErrorText))
		if strings.TrimSpace(run.RawText) != "" {
			fmt.Fprintf(&b, "Raw response:\n\n```\n%s\n```\n", strings.TrimSpace(run.RawText))
		}
		return b.String()
	}

	var res feedback.Result
	if len(run.Result) > 0 {
		if err := json.Unmarshal(run.Result, &res); err != nil {
			fmt.Fprintf(&b, "## Result Unavailable\n\nStored result could not be decoded: %s\n", sanitize(err.Error()))
			return b.String()
		}
	}

	writeFeedbackSections(&b, res)
	writeCostSection(&b, p.Costs)
	writeCompetitorSection(&b, p.Competitors)
	return b.String()
}

func writeFeedbackSections(b *strings.Builder, res feedback.Result) {
	fmt.Fprintf(b, "## Customer Verdict\n\n")
	fmt.Fprintf(b, "| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(b, "| Simulated customers | %d |\n", res.SampleSize)
	fmt.Fprintf(b, "| Would buy | %.0f%% (%d customers) |\n", res.BuyPercentage, res.EstimatedBuyers())
	fmt.Fprintf(b, "| Sentiment | %s |\n\n", sanitizeCell(res.Sentiment))
	fmt.Fprintf(b, "%s\n\n", sanitize(res.CompetitiveSummary))

	fmt.Fprintf(b, "## Star Ratings\n\n")
	fmt.Fprintf(b, "| Stars | Customers | Share |\n|-------|-----------|-------|\n")
	for star := 5; star >= 1; star-- {
		key := fmt.Sprintf("%d", star)
		n := res.StarRatings[key]
		share := 0.0
		if res.SampleSize > 0 {
			share = float64(n) / float64(res.SampleSize) * 100
		}
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", strings.Repeat("★", star), n, share)
	}
	fmt.Fprintf(b, "\n")

	writeAspectTable(b, "What Customers Liked", res.BestAspects)
	writeAspectTable(b, "What Customers Disliked", res.WorstAspects)

	if len(res.Comments) > 0 {
		fmt.Fprintf(b, "## Sample Comments\n\n")
		for _, c := range res.Comments {
			fmt.Fprintf(b, "> %s\n\n", sanitize(c))
		}
	}
}

func writeAspectTable(b *strings.Builder, title string, a feedback.AspectShare) {
	fmt.Fprintf(b, "## %s\n\n", title)
	fmt.Fprintf(b, "| Aspect | Share |\n|--------|-------|\n")
	fmt.Fprintf(b, "| %s | %d%% |\n", sanitizeCell(a.Aspect1), a.Pct1)
	fmt.Fprintf(b, "| %s | %d%% |\n", sanitizeCell(a.Aspect2), a.Pct2)
	fmt.Fprintf(b, "| Other | %d%% |\n\n", a.OtherPct)
}

func writeCostSection(b *strings.Builder, in pricing.CostInputs) {
	costs := pricing.ComputeCosts(in)
	fmt.Fprintf(b, "## Cost Breakdown\n\n")
	fmt.Fprintf(b, "| Component | Per Unit |\n|-----------|----------|\n")
	fmt.Fprintf(b, "| Materials | %s |\n", fmtMoney(costs.MaterialsCost))
	fmt.Fprintf(b, "| Equipment amortization | %s |\n", fmtMoney(costs.EquipmentAmortization))
	fmt.Fprintf(b, "| Labor | %s |\n", fmtMoney(costs.LaborCost))
	fmt.Fprintf(b, "| Overhead | %s |\n", fmtMoney(costs.OverheadPerUnit))
	fmt.Fprintf(b, "| Platform fees | %s |\n", fmtMoney(costs.PlatformFeesPerUnit))
	fmt.Fprintf(b, "| **Total unit cost** | **%s** |\n", fmtMoney(costs.TotalUnitCost))
	fmt.Fprintf(b, "| Suggested price | %s |\n\n", fmtMoney(costs.SuggestedPrice))
	if costs.BreakevenOK {
		fmt.Fprintf(b, "Breakeven: %.1f units per month.\n\n", costs.BreakevenUnits)
	} else {
		fmt.Fprintf(b, "Breakeven: N/A (price does not cover per-unit costs).\n\n")
	}
}

func writeCompetitorSection(b *strings.Builder, competitors []pricing.Competitor) {
	rows := 0
	for _, c := range competitors {
		if c.Price > 0 {
			rows++
		}
	}
	if rows == 0 {
		return
	}
	fmt.Fprintf(b, "## Competitors\n\n")
	fmt.Fprintf(b, "| Name | Price | Details |\n|------|-------|--------|\n")
	for _, c := range competitors {
		if c.Price <= 0 {
			continue
		}
		name := c.Name
		if name == "" {
			name = "—"
		}
		details := c.Details
		if details == "" {
			details = "—"
		}
		fmt.Fprintf(b, "| %s | %s | %s |\n", sanitizeCell(name), fmtMoney(c.Price), sanitizeCell(details))
	}
	fmt.Fprintf(b, "\n")
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

func sanitizeCell(s string) string {
	s = sanitize(s)
	return strings.ReplaceAll(s, "|", "\\|")
}

func fmtMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func joinLocation(city, state string) string {
	switch {
	case city == "":
		return state
	case state == "":
		return city
	default:
		return city + ", " + state
	}
}
