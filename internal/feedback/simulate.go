package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lmcgowan/pricelab/internal/pricing"
	"github.com/lmcgowan/pricelab/internal/profile"
)

// ValidationError marks a blocking input problem found before any
// computation or outbound call.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Simulator drives the one-shot request lifecycle for a generate action:
// Idle -> Awaiting-Response -> Displayed or Failed. One synchronous call
// per action, no automatic retry; a Failed run stays failed until the
// user explicitly starts a new one.
type Simulator struct {
	caller LLMCaller
	store  profile.Store
	tracer trace.Tracer
}

func NewSimulator(caller LLMCaller, store profile.Store) *Simulator {
	return &Simulator{
		caller: caller,
		store:  store,
		tracer: otel.Tracer("pricelab/feedback"),
	}
}

// Quote computes the price a profile would be simulated at, together with
// the cost breakdown and (for market/value modes) the recommendation.
func Quote(p profile.PricingProfile) (float64, pricing.CostBreakdown, *pricing.Recommendation, error) {
	costs := pricing.ComputeCosts(p.Costs)
	switch p.Mode {
	case pricing.ModeCostPlus:
		return costs.SuggestedPrice, costs, nil, nil
	case pricing.ModeMarketBased:
		rec := pricing.RecommendMarket(pricing.MarketInputs{
			Competitors:        p.Competitors,
			UnitCost:           costs.TotalUnitCost,
			MinProfitablePrice: costs.TotalUnitCost,
		})
		price := p.ManualPrice
		if price <= 0 {
			price = rec.Recommended
		}
		return pricing.RoundCents(price), costs, &rec, nil
	case pricing.ModeValueBased:
		v := p.Value
		if v.OwnUnitCost <= 0 {
			v.OwnUnitCost = costs.TotalUnitCost
		}
		if v.MinProfitablePrice <= 0 {
			v.MinProfitablePrice = costs.TotalUnitCost
		}
		rec := pricing.RecommendValue(v)
		return rec.Recommended, costs, &rec, nil
	default:
		return 0, costs, nil, &ValidationError{Msg: fmt.Sprintf("invalid pricing_mode %q", p.Mode)}
	}
}

func validateForSimulation(p profile.PricingProfile, price float64) error {
	missing := []string{}
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "product name")
	}
	if price <= 0 {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(p.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(p.State) == "" {
		missing = append(missing, "state")
	}
	if len(missing) > 0 {
		return &ValidationError{Msg: "please enter " + strings.Join(missing, ", ")}
	}
	return nil
}

// Simulate runs one generate action end to end and records it as a Run.
// Input validation blocks before any computation; collaborator failures
// (transport or unparseable JSON) end the run in the failed state with
// the raw response preserved for display.
func (s *Simulator) Simulate(ctx context.Context, p profile.PricingProfile) (profile.Run, error) {
	ctx, span := s.tracer.Start(ctx, "simulate",
		trace.WithAttributes(
			attribute.String("product", p.Name),
			attribute.String("pricing_mode", string(p.Mode)),
		))
	defer span.End()

	price, costs, rec, err := Quote(p)
	if err != nil {
		return profile.Run{}, err
	}
	if err := validateForSimulation(p, price); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return profile.Run{}, err
	}

	sampleSize := p.CustomerCount
	if sampleSize <= 0 {
		sampleSize = 1000
	}

	run := profile.Run{
		ID:          uuid.NewString(),
		ProfileName: p.Name,
		Profile:     p,
		Price:       price,
		Status:      profile.RunAwaiting,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.SaveRun(run); err != nil {
		return profile.Run{}, err
	}

	prompt := BuildPrompt(Request{
		Profile:        p,
		Price:          price,
		Costs:          costs,
		Recommendation: rec,
		SampleSize:     sampleSize,
	})

	raw, callErr := s.callOnce(ctx, prompt)
	run.CompletedAt = time.Now().UTC()
	if callErr != nil {
		run.Status = profile.RunFailed
		run.ErrorText = callErr.Error()
		span.SetStatus(codes.Error, callErr.Error())
		if saveErr := s.store.SaveRun(run); saveErr != nil {
			log.Printf("pricelab: save failed run %s: %v", run.ID, saveErr)
		}
		return run, nil
	}

	result, normErr := Normalize(raw, sampleSize)
	if normErr != nil {
		run.Status = profile.RunFailed
		run.RawText = raw
		run.ErrorText = normErr.Error()
		span.SetStatus(codes.Error, normErr.Error())
		if saveErr := s.store.SaveRun(run); saveErr != nil {
			log.Printf("pricelab: save failed run %s: %v", run.ID, saveErr)
		}
		return run, nil
	}

	blob, err := json.Marshal(result)
	if err != nil {
		return profile.Run{}, err
	}
	run.Status = profile.RunDisplayed
	run.Result = blob
	span.SetAttributes(attribute.Float64("buy_percentage", result.BuyPercentage))
	if err := s.store.SaveRun(run); err != nil {
		return profile.Run{}, err
	}
	return run, nil
}

func (s *Simulator) callOnce(ctx context.Context, prompt string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "llm.generate")
	defer span.End()
	raw, err := s.caller.GenerateJSON(ctx, prompt)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("completion service: %w", err)
	}
	return raw, nil
}
