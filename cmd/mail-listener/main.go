package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vega/internal/config"
	"vega/internal/listener"
	"vega/internal/llm"
	"vega/internal/pipeline"
	"vega/internal/reftables"
	"vega/internal/storage"
	"vega/internal/textsource"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	tables, err := reftables.LoadDir(cfg.TablesDir)
	must(err)

	client := llm.NewClient(cfg)
	extractors := pipeline.ExtractorSet{Remote: client, Heuristic: pipeline.HeuristicExtractor{}}
	analysisService := pipeline.NewAnalysisService(cfg, textsource.New(cfg), extractors, tables, client)
	processor := pipeline.NewProcessingService(db, cfg, analysisService)

	svc := listener.NewService(db, cfg, processor)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
