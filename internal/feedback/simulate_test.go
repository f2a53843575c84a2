package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/lmcgowan/pricelab/internal/pricing"
	"github.com/lmcgowan/pricelab/internal/profile"
)

type fakeCaller struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeCaller) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func simProfile() profile.PricingProfile {
	return profile.PricingProfile{
		Name:  "Friendship Bracelet",
		City:  "Portland",
		State: "OR",
		Mode:  pricing.ModeCostPlus,
		Costs: pricing.CostInputs{
			Materials: []pricing.CostComponent{{Name: "thread", UnitCost: 1.50}},
			MarginPct: 100,
		},
		CustomerCount: 100,
	}
}

const goodResponse = `{
	"competitive_summary": "Fairly priced for handmade goods.",
	"buy_percentage": 55,
	"sentiment": "warm",
	"comments": ["Cute!", "Add more colors"],
	"best_aspects": {"aspect1":"look","pct1":60,"aspect2":"price","pct2":30,"other_pct":10},
	"worst_aspects": {"aspect1":"durability","pct1":70,"aspect2":"sizing","pct2":20,"other_pct":10},
	"star_ratings": {"1":5,"2":5,"3":10,"4":30,"5":50}
}`

func TestSimulateDisplayedLifecycle(t *testing.T) {
	store := profile.NewMemStore()
	caller := &fakeCaller{response: goodResponse}
	sim := NewSimulator(caller, store)

	run, err := sim.Simulate(context.Background(), simProfile())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if run.Status != profile.RunDisplayed {
		t.Fatalf("status = %s, want displayed", run.Status)
	}
	if caller.calls != 1 {
		t.Fatalf("caller invoked %d times, want exactly 1", caller.calls)
	}
	if run.Price != 3.00 {
		t.Fatalf("price = %v, want 3.00", run.Price)
	}

	var res Result
	if err := json.Unmarshal(run.Result, &res); err != nil {
		t.Fatalf("decode stored result: %v", err)
	}
	if res.BuyPercentage != 55 || res.SampleSize != 100 {
		t.Fatalf("stored result = %+v", res)
	}

	stored, ok, err := store.GetRun(run.ID)
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if stored.Status != profile.RunDisplayed {
		t.Fatalf("persisted status = %s", stored.Status)
	}
}

func TestSimulateTransportFailureNoRetry(t *testing.T) {
	store := profile.NewMemStore()
	caller := &fakeCaller{err: errors.New("connection refused")}
	sim := NewSimulator(caller, store)

	run, err := sim.Simulate(context.Background(), simProfile())
	if err != nil {
		t.Fatalf("a failed run is an outcome, not an error: %v", err)
	}
	if run.Status != profile.RunFailed {
		t.Fatalf("status = %s, want failed", run.Status)
	}
	if caller.calls != 1 {
		t.Fatalf("caller invoked %d times, want exactly 1", caller.calls)
	}
	if !strings.Contains(run.ErrorText, "connection refused") {
		t.Fatalf("error text = %q", run.ErrorText)
	}

	stored, ok, err := store.GetRun(run.ID)
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if stored.Status != profile.RunFailed {
		t.Fatalf("persisted status = %s", stored.Status)
	}
}

func TestSimulateUnparseableResponseKeepsRaw(t *testing.T) {
	store := profile.NewMemStore()
	caller := &fakeCaller{response: "I'd rather write a poem about bracelets."}
	sim := NewSimulator(caller, store)

	run, err := sim.Simulate(context.Background(), simProfile())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if run.Status != profile.RunFailed {
		t.Fatalf("status = %s, want failed", run.Status)
	}
	if run.RawText != caller.response {
		t.Fatalf("raw text = %q", run.RawText)
	}
	if run.ErrorText == "" {
		t.Fatal("error text missing")
	}
}

func TestSimulateValidationBlocksBeforeCall(t *testing.T) {
	store := profile.NewMemStore()
	caller := &fakeCaller{response: goodResponse}
	sim := NewSimulator(caller, store)

	p := simProfile()
	p.City = ""
	p.State = ""
	_, err := sim.Simulate(context.Background(), p)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !strings.Contains(ve.Msg, "city") || !strings.Contains(ve.Msg, "state") {
		t.Fatalf("message = %q", ve.Msg)
	}
	if caller.calls != 0 {
		t.Fatal("validation failure must not reach the completion service")
	}
	if runs, _ := store.ListRuns(); len(runs) != 0 {
		t.Fatalf("validation failure recorded %d runs", len(runs))
	}
}

func TestSimulateDefaultsSampleSize(t *testing.T) {
	store := profile.NewMemStore()
	caller := &fakeCaller{response: goodResponse}
	sim := NewSimulator(caller, store)

	p := simProfile()
	p.CustomerCount = 0
	if _, err := sim.Simulate(context.Background(), p); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(caller.prompts) != 1 || !strings.Contains(caller.prompts[0], "1000 potential customers") {
		t.Fatal("default sample size of 1000 not reflected in the request")
	}
}

func TestQuotePerMode(t *testing.T) {
	base := simProfile()

	price, costs, rec, err := Quote(base)
	if err != nil || rec != nil {
		t.Fatalf("cost-plus quote: %v rec=%v", err, rec)
	}
	if price != costs.SuggestedPrice || price != 3.00 {
		t.Fatalf("cost-plus price = %v", price)
	}

	market := base
	market.Mode = pricing.ModeMarketBased
	market.Competitors = []pricing.Competitor{{Price: 5}, {Price: 7}}
	price, _, rec, err = Quote(market)
	if err != nil || rec == nil {
		t.Fatalf("market quote: %v", err)
	}
	if price != rec.Recommended {
		t.Fatalf("market price = %v, want recommendation %v", price, rec.Recommended)
	}

	market.ManualPrice = 6.50
	price, _, _, err = Quote(market)
	if err != nil || price != 6.50 {
		t.Fatalf("manual market price = %v (%v)", price, err)
	}

	value := base
	value.Mode = pricing.ModeValueBased
	value.Value = pricing.ValueInputs{TypicalWillingnessToPay: 10}
	price, _, rec, err = Quote(value)
	if err != nil || rec == nil {
		t.Fatalf("value quote: %v", err)
	}
	if price != rec.Recommended {
		t.Fatalf("value price = %v, want %v", price, rec.Recommended)
	}

	bad := base
	bad.Mode = "vibes"
	_, _, _, err = Quote(bad)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("invalid mode must be a validation error, got %v", err)
	}
}
