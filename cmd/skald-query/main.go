// Package main implements the skald-query binary.
// It runs a filtered query against a store directory and prints matching
// events as JSONL on stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/skalddb/skald"
	"github.com/skalddb/skald/pkg/config"
	"github.com/skalddb/skald/pkg/types"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML or JSON config file (optional)")
		dataDir    = flag.String("data", "./data/skald", "Store data directory")
		eventType  = flag.String("type", "", "Filter by event type (routing, performance, audit)")
		taskType   = flag.String("task", "", "Filter by task type")
		provider   = flag.String("provider", "", "Filter by provider")
		modelName  = flag.String("model", "", "Filter by model name")
		isLocal    = flag.String("local", "", "Filter by local model usage (true or false)")
		since      = flag.String("since", "", "Range start (RFC3339)")
		until      = flag.String("until", "", "Range end (RFC3339)")
		limit      = flag.Int("limit", 0, "Maximum number of results (0 = unlimited)")
	)
	flag.Parse()

	cfg := loadConfig(*configPath, *dataDir)

	store, err := skald.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	filter, err := buildFilter(*eventType, *taskType, *provider, *modelName, *isLocal, *since, *until, *limit)
	if err != nil {
		log.Fatalf("Invalid filter: %v", err)
	}

	events, err := store.Query(context.Background(), filter)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			log.Fatalf("Failed to encode event: %v", err)
		}
	}
	log.Printf("%d events matched", len(events))
}

// loadConfig merges file, flag, and environment configuration.
func loadConfig(configPath, dataDir string) *config.Config {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := config.LoadFromEnv(cfg); err != nil {
		log.Fatalf("Failed to load environment config: %v", err)
	}
	return cfg
}

// buildFilter translates flag values into a predicate filter.
func buildFilter(eventType, taskType, provider, modelName, isLocal, since, until string, limit int) (types.Filter, error) {
	f := types.Filter{
		EventType: eventType,
		TaskType:  taskType,
		Provider:  provider,
		ModelName: modelName,
		Limit:     limit,
	}

	if isLocal != "" {
		v := isLocal == "true"
		f.IsLocal = &v
	}

	if since != "" || until != "" {
		r := &types.TimeRange{StartMillis: 0, EndMillis: time.Now().UnixMilli()}
		if since != "" {
			t, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return types.Filter{}, err
			}
			r.StartMillis = t.UnixMilli()
		}
		if until != "" {
			t, err := time.Parse(time.RFC3339, until)
			if err != nil {
				return types.Filter{}, err
			}
			r.EndMillis = t.UnixMilli()
		}
		f.TimeRange = r
	}

	return f, nil
}
