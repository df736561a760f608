// Package main implements the skald-export binary.
// It flattens matching events into a CSV or JSONL export file.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/skalddb/skald"
	"github.com/skalddb/skald/pkg/config"
	"github.com/skalddb/skald/pkg/types"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML or JSON config file (optional)")
		dataDir    = flag.String("data", "./data/skald", "Store data directory")
		outDir     = flag.String("out", ".", "Output directory for the export file")
		format     = flag.String("format", "csv", "Export format: csv or jsonl")
		eventType  = flag.String("type", "", "Filter by event type (routing, performance, audit)")
		taskType   = flag.String("task", "", "Filter by task type")
		provider   = flag.String("provider", "", "Filter by provider")
	)
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFromFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if err := config.LoadFromEnv(cfg); err != nil {
		log.Fatalf("Failed to load environment config: %v", err)
	}

	store, err := skald.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	filter := types.Filter{
		EventType: *eventType,
		TaskType:  *taskType,
		Provider:  *provider,
	}

	path, n, err := store.ExportToFile(context.Background(), filter, *format, *outDir)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	log.Printf("Exported %d records to %s", n, path)
}
