// Package orchestrator drives the Normalizer, Exact-Match Indexer,
// Blocker, Clusterer, and Canonicalizer through one resolution run in
// order, per §4.7. Grounded on the teacher's resolver.Resolve, which
// plays the same role (single entry point, same stage order) against
// a database-backed pipeline instead of an in-memory one.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aegisshield/entity-resolution/internal/blocking"
	"github.com/aegisshield/entity-resolution/internal/canonical"
	"github.com/aegisshield/entity-resolution/internal/cluster"
	"github.com/aegisshield/entity-resolution/internal/config"
	"github.com/aegisshield/entity-resolution/internal/exactmatch"
	"github.com/aegisshield/entity-resolution/internal/model"
	"github.com/aegisshield/entity-resolution/internal/normalize"
	"github.com/aegisshield/entity-resolution/internal/similarity"
)

// Stage names reported through the progress callback, in run order.
const (
	StageNormalize    = "normalize"
	StageExactMatch   = "exact_match"
	StageBlock        = "block"
	StageCluster      = "cluster"
	StageCanonicalize = "canonicalize"
)

// ProgressFunc receives the current stage and its (done, total) unit
// count. Orchestrator calls it synchronously between stages; it must
// return quickly.
type ProgressFunc func(stage string, done, total int)

// Result is the Orchestrator's output: the resolved entities plus the
// blocking keys dropped for exceeding the configured size cap, for
// diagnostic logging.
type Result struct {
	RunID        string
	Entities     []model.Entity
	DroppedKeys  []string
}

// Orchestrator runs the full pipeline over a fixed configuration.
type Orchestrator struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds an Orchestrator. A nil logger falls back to slog's
// default logger, matching the teacher's service constructors.
func New(cfg config.Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{cfg: cfg, logger: logger}
}

// Run executes Normalize -> ExactMatch -> Block -> Cluster ->
// Canonicalize in order, honoring ctx cancellation between stages.
// A cancellation or a malformed-input error aborts the run before any
// partial result is returned, per §7's atomicity requirement.
func (o *Orchestrator) Run(ctx context.Context, records []model.PartyRecord, progress ProgressFunc) (Result, error) {
	const op = "orchestrator.Run"

	if progress == nil {
		progress = func(string, int, int) {}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, model.NewError(model.ResourceExhausted, op, err)
	}
	if err := validateRecords(records); err != nil {
		return Result{}, err
	}

	runID := uuid.New().String()
	n := len(records)
	o.logger.InfoContext(ctx, "resolution run starting", "run_id", runID, "records", n)

	normalizer := normalize.New()
	normalized := normalizer.NormalizeAll(records)
	progress(StageNormalize, n, n)
	if err := ctx.Err(); err != nil {
		return Result{}, model.NewError(model.ResourceExhausted, op, err)
	}

	exact := exactmatch.Index(normalized)
	progress(StageExactMatch, n, n)
	if err := ctx.Err(); err != nil {
		return Result{}, model.NewError(model.ResourceExhausted, op, err)
	}

	blocker := blocking.New(o.cfg.BlockSizeCap)
	blocks := blocker.Build(normalized, exact.Unplaced)
	progress(StageBlock, len(exact.Unplaced), len(exact.Unplaced))
	if len(blocks.Dropped) > 0 {
		o.logger.WarnContext(ctx, "blocking keys dropped for exceeding size cap",
			"count", len(blocks.Dropped), "cap", o.cfg.BlockSizeCap)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, model.NewError(model.ResourceExhausted, op, err)
	}

	kernel := similarity.New(o.cfg)
	clusterer := cluster.New(kernel, o.cfg.MergeThreshold)
	clusters := clusterer.Cluster(normalized, exact, blocks)
	progress(StageCluster, len(clusters), len(clusters))
	if err := ctx.Err(); err != nil {
		return Result{}, model.NewError(model.ResourceExhausted, op, err)
	}

	canonicalizer := canonical.New(kernel, o.cfg)
	entities := canonicalizer.CanonicalizeAll(normalized, clusters)
	progress(StageCanonicalize, len(entities), len(entities))

	o.logger.InfoContext(ctx, "resolution run complete", "run_id", runID, "records", n, "entities", len(entities))

	return Result{RunID: runID, Entities: entities, DroppedKeys: blocks.Dropped}, nil
}

// validateRecords checks the minimal precondition the pipeline
// requires: every record must carry a non-empty, unique identifier.
// Run calls it first, so a bad record fails the run with a
// MalformedInput error before any stage runs.
func validateRecords(records []model.PartyRecord) error {
	const op = "orchestrator.validateRecords"

	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID == "" {
			return model.NewError(model.MalformedInput, op, fmt.Errorf("record at index %d has an empty id", i))
		}
		if _, dup := seen[r.ID]; dup {
			return model.NewError(model.MalformedInput, op, fmt.Errorf("duplicate record id %q", r.ID))
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
