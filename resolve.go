package entityresolution

import (
	"context"
	"log/slog"

	"github.com/aegisshield/entity-resolution/internal/config"
	"github.com/aegisshield/entity-resolution/internal/model"
	"github.com/aegisshield/entity-resolution/internal/orchestrator"
)

// Re-exported types so callers depend only on the root package for
// the shapes they pass in and get back.
type (
	// PartyRecord is one raw, noisy record to resolve.
	PartyRecord = model.PartyRecord
	// Entity is one resolved, canonical party.
	Entity = model.Entity
	// Config is the tunable surface for a resolution run.
	Config = config.Config
)

// Result is what Resolve returns: the resolved entities plus any
// blocking keys dropped for exceeding the configured size cap.
type Result struct {
	RunID       string
	Entities    []Entity
	DroppedKeys []string
}

// ProgressFunc is called between pipeline stages with the stage name
// and a (done, total) unit count. See orchestrator's Stage constants.
type ProgressFunc = orchestrator.ProgressFunc

// options holds the settings Option values mutate.
type options struct {
	logger   *slog.Logger
	progress ProgressFunc
}

// Option configures a single Resolve call.
type Option func(*options)

// WithLogger attaches a structured logger to the run. The default is
// slog's package-level logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProgress registers a callback invoked between pipeline stages.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// Resolve runs the full resolution pipeline — normalize, exact-match,
// block, cluster, canonicalize — over records and returns the
// resolved entities. It is the library's sole external entry point.
//
// Resolve is atomic: on error, or if ctx is canceled before the run
// completes, it returns no entities at all, per §7.
func Resolve(ctx context.Context, records []model.PartyRecord, cfg config.Config, opts ...Option) (Result, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	orch := orchestrator.New(cfg, o.logger)
	out, err := orch.Run(ctx, records, o.progress)
	if err != nil {
		return Result{}, err
	}

	return Result{RunID: out.RunID, Entities: out.Entities, DroppedKeys: out.DroppedKeys}, nil
}
