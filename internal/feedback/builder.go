package feedback

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lmcgowan/pricelab/internal/pricing"
)

// Comment volume is tiered by the requested sample size so small
// simulations stay readable and large ones feel representative.
func CommentCount(sampleSize int) int {
	switch {
	case sampleSize <= 100:
		return 8
	case sampleSize <= 1000:
		return 10
	case sampleSize <= 2500:
		return 12
	default:
		return 15
	}
}

const responseSchemaPrompt = `Required JSON schema:
{
  "competitive_summary":"string (2-3 sentences on how the price sits against the market)",
  "buy_percentage":"number 0-100",
  "sentiment":"string (one short phrase)",
  "comments":["string"],
  "best_aspects":{"aspect1":"string","pct1":"int","aspect2":"string","pct2":"int","other_pct":"int"},
  "worst_aspects":{"aspect1":"string","pct1":"int","aspect2":"string","pct2":"int","other_pct":"int"},
  "star_ratings":{"1":"int","2":"int","3":"int","4":"int","5":"int"}
}
Constraints: pct1+pct2+other_pct must equal 100 in each aspect block.
The star rating counts must sum to the simulated customer count.`

// BuildPrompt assembles the natural-language instruction set plus the
// response schema the normalizer relies on. The structured product facts
// go in as indented JSON so nothing is lost to prose paraphrasing.
func BuildPrompt(req Request) string {
	var b strings.Builder

	p := req.Profile
	fmt.Fprintf(&b, "Imagine %d potential customers", req.SampleSize)
	if p.City != "" || p.State != "" {
		fmt.Fprintf(&b, " from %s", joinLocation(p.City, p.State))
	}
	fmt.Fprintf(&b, " for a product called %q", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, " (%s)", p.Description)
	}
	fmt.Fprintf(&b, ".\nThe product is sold at $%.2f using %s pricing.\n", req.Price, modeLabel(p.Mode))
	if p.Audience != "" {
		fmt.Fprintf(&b, "Audience: %s.\n", p.Audience)
	}
	fmt.Fprintf(&b, "%s\n", competitorBlock(p.Competitors))

	fmt.Fprintf(&b, "\nProduct economics:\n%s\n", mustJSON(req.Costs))
	if req.Recommendation != nil {
		fmt.Fprintf(&b, "\nPrice recommendation context:\n%s\n", mustJSON(req.Recommendation))
	}

	if p.City != "" || p.State != "" {
		fmt.Fprintf(&b, "\nConsidering typical incomes and consumer attitudes in %s, estimate what percentage of these customers would buy at this price and the general sentiment.\n", joinLocation(p.City, p.State))
	} else {
		fmt.Fprintf(&b, "\nEstimate what percentage of these customers would buy at this price and the general sentiment.\n")
	}

	nComments := CommentCount(req.SampleSize)
	fmt.Fprintf(&b, "\nGenerate exactly %d sample customer comments. Most comments should include easy, realistic suggestions a young student entrepreneur could actually try (more colors, cheaper version, a fun feature, better packaging). A couple can simply be encouraging. No advanced or expensive business advice.\n", nComments)
	fmt.Fprintf(&b, "\nAlso report the top 2 things customers like best and the top 2 they like least, each with integer percentages plus an \"other\" bucket, and a 1-5 star rating distribution across all %d simulated customers.\n", req.SampleSize)

	fmt.Fprintf(&b, "\n%s\n\nRespond with only valid JSON matching the schema.", responseSchemaPrompt)
	return b.String()
}

// competitorBlock mirrors the form's competitor list: rows without a price
// are treated as unfilled and skipped entirely.
func competitorBlock(competitors []pricing.Competitor) string {
	lines := make([]string, 0, len(competitors))
	for _, c := range competitors {
		if c.Price <= 0 {
			continue
		}
		desc := fmt.Sprintf("Price: $%.2f", c.Price)
		if c.Name != "" {
			desc = fmt.Sprintf("Name: %s, %s", c.Name, desc)
		}
		if c.Details != "" {
			desc = fmt.Sprintf("%s, Details: %s", desc, c.Details)
		}
		lines = append(lines, desc)
	}
	if len(lines) == 0 {
		return "There are no clear competitors in the market."
	}
	return "Here are the main competitors in the market:\n" + strings.Join(lines, "\n")
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

func modeLabel(m pricing.Mode) string {
	switch m {
	case pricing.ModeCostPlus:
		return "cost-plus"
	case pricing.ModeMarketBased:
		return "market-based"
	case pricing.ModeValueBased:
		return "value-based"
	default:
		return string(m)
	}
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
