package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/lmcgowan/pricelab/internal/config"
	"github.com/lmcgowan/pricelab/internal/feedback"
	"github.com/lmcgowan/pricelab/internal/httpapi"
	"github.com/lmcgowan/pricelab/internal/profile"
	"github.com/lmcgowan/pricelab/internal/report"
	"github.com/lmcgowan/pricelab/internal/telemetry"
)

func main() {
	var (
		addr   = flag.String("addr", "", "Listen address (default: :$PORT)")
		dbPath = flag.String("db", "", "SQLite database path (default: $DB_PATH)")
	)
	flag.Parse()

	cfg := config.Load()
	if *addr == "" {
		*addr = ":" + cfg.Port
	}
	if *dbPath == "" {
		*dbPath = cfg.DBPath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "pricelab-server", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("pricelab: flush traces: %v", err)
		}
	}()

	store, err := profile.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("open store %s: %v", *dbPath, err)
	}
	defer store.Close()

	caller, err := feedback.NewCallerFromEnv(ctx, cfg.LLMProvider, feedback.CallerConfig{
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})
	if err != nil {
		log.Fatalf("llm caller: %v", err)
	}

	simulator := feedback.NewSimulator(caller, store)
	handler := httpapi.NewServer(store, simulator, report.NewChromiumPDFRenderer())

	log.Printf("pricelab listening on %s (db=%s, provider=%s)", *addr, *dbPath, strings.ToLower(cfg.LLMProvider))
	srv := &http.Server{Addr: *addr, Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
