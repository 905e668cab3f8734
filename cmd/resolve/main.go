// Command resolve is a thin demonstration CLI over the
// entityresolution library: it loads configuration the same way the
// service does, builds an in-memory sample of party records, and
// prints the resolved entities. It reads no CSV and talks to no
// graph database — those are left to the caller's own record source.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	entityresolution "github.com/aegisshield/entity-resolution"
	"github.com/aegisshield/entity-resolution/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting entity resolution run",
		"merge_threshold", cfg.MergeThreshold,
		"block_size_cap", cfg.BlockSizeCap)

	records := sampleRecords()

	result, err := entityresolution.Resolve(context.Background(), records, cfg,
		entityresolution.WithLogger(logger),
		entityresolution.WithProgress(func(stage string, done, total int) {
			logger.Info("stage complete", "stage", stage, "done", done, "total", total)
		}),
	)
	if err != nil {
		logger.Error("resolution run failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Entities); err != nil {
		logger.Error("failed to encode entities", "error", err)
		os.Exit(1)
	}
}

// sampleRecords is a small, hand-built set of noisy records standing
// in for a real source system feed.
func sampleRecords() []entityresolution.PartyRecord {
	return []entityresolution.PartyRecord{
		{ID: "r1", Name: "John A. Smith", Email: "john.smith@example.com", Phone: "+1 (555) 123-4567", Address: "123 Main St, Springfield", Country: "US", Source: "ledger"},
		{ID: "r2", Name: "Jon Smith", Email: "JOHN.SMITH@EXAMPLE.COM", Phone: "555-123-4567", Address: "123 Main Street, Springfield", Country: "US", Source: "registry"},
		{ID: "r3", Name: "Acme Corp Inc.", Email: "contact@acme.com", Phone: "555-999-0000", Address: "1 Acme Plaza", Country: "US", Source: "sanctions"},
		{ID: "r4", Name: "Acme Corporation", Email: "info@acme.com", Phone: "", Address: "1 Acme Plz", Country: "US", Source: "ledger"},
		{ID: "r5", Name: "Maria Garcia", Email: "mgarcia@example.org", Phone: "555-222-3333", Address: "45 Oak Ave", Country: "MX", Source: "registry"},
	}
}
