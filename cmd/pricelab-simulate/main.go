package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmcgowan/pricelab/internal/config"
	"github.com/lmcgowan/pricelab/internal/feedback"
	"github.com/lmcgowan/pricelab/internal/profile"
	"github.com/lmcgowan/pricelab/internal/report"
)

// pricelab-simulate runs one simulation from an exported profile JSON
// file and prints the markdown report, without the HTTP server.
func main() {
	var (
		profilePath = flag.String("profile", "", "Path to an exported profile JSON file (required)")
		priceOnly   = flag.Bool("price-only", false, "Print the computed price and cost breakdown, skip the simulation")
		out         = flag.String("out", "", "Write the report to this file instead of stdout")
	)
	flag.Parse()

	if *profilePath == "" {
		log.Fatal("--profile is required")
	}
	blob, err := os.ReadFile(*profilePath)
	if err != nil {
		log.Fatal(err)
	}
	p, err := profile.ImportJSON(blob)
	if err != nil {
		log.Fatalf("load profile: %v", err)
	}

	if *priceOnly {
		price, costs, rec, err := feedback.Quote(p)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("price: $%.2f\n", price)
		fmt.Printf("total unit cost: $%.2f\n", costs.TotalUnitCost)
		if costs.BreakevenOK {
			fmt.Printf("breakeven: %.1f units/month\n", costs.BreakevenUnits)
		}
		if rec != nil {
			fmt.Printf("recommended: $%.2f (sweet spot $%.2f-$%.2f)\n", rec.Recommended, rec.SweetSpotLow, rec.SweetSpotHigh)
		}
		return
	}

	cfg := config.Load()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	caller, err := feedback.NewCallerFromEnv(ctx, cfg.LLMProvider, feedback.CallerConfig{
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})
	if err != nil {
		log.Fatal(err)
	}

	sim := feedback.NewSimulator(caller, profile.NewMemStore())
	run, err := sim.Simulate(ctx, p)
	if err != nil {
		log.Fatal(err)
	}

	md := report.BuildMarkdown(run)
	if *out == "" {
		fmt.Print(md)
		return
	}
	if err := os.WriteFile(*out, []byte(md), 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("report written to %s (run %s, %s)", *out, run.ID, run.Status)
}
