package sync

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/foldermirror/pkg/digest"
	"github.com/sdejongh/foldermirror/pkg/logging"
	"github.com/sdejongh/foldermirror/pkg/models"
	"github.com/sdejongh/foldermirror/pkg/ratelimit"
	"github.com/sdejongh/foldermirror/pkg/storage"
)

// Options configures an Engine
type Options struct {
	// Hash is the digest algorithm used for change detection
	Hash digest.Algorithm
	// BufferSize is the chunk size for hashing reads
	BufferSize int
	// Workers bounds concurrent file hashing within one scan
	Workers int
	// Exclude lists patterns left out of both manifests
	Exclude []string
	// BandwidthLimit caps copy throughput in bytes per second, 0 = unlimited
	BandwidthLimit int64
	// DryRun plans the pass without applying it
	DryRun bool
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		Hash:       digest.XXH3,
		BufferSize: digest.DefaultBufferSize,
		Workers:    4,
	}
}

// Plan is the outcome of scanning both trees and diffing them
type Plan struct {
	Source  *models.Manifest
	Replica *models.Manifest
	Actions []models.Action
}

// Engine runs synchronization passes: scan both trees, diff the manifests,
// apply the actions in order. A pass is best-effort, not atomic; a pass that
// stops early is repaired by the next one.
//
// Passes over the same replica must not run concurrently.
type Engine struct {
	opts    Options
	scanner *Scanner
	limiter *ratelimit.Limiter
	logger  logging.Logger
}

// NewEngine creates a new sync engine
func NewEngine(opts Options, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	hasher := digest.NewHasher(opts.Hash, opts.BufferSize)
	return &Engine{
		opts:    opts,
		scanner: NewScanner(hasher, opts.Workers, opts.Exclude, logger),
		limiter: ratelimit.NewLimiter(opts.BandwidthLimit),
		logger:  logger,
	}
}

// Scanner returns the scanner used for both trees
func (e *Engine) Scanner() *Scanner {
	return e.scanner
}

// Plan scans source and replica independently and diffs them.
// Any scan or hash failure is returned and no plan is produced.
func (e *Engine) Plan(ctx context.Context, source, replica *storage.Tree) (*Plan, error) {
	srcManifest, err := e.scanner.Scan(ctx, source)
	if err != nil {
		return nil, err
	}

	replicaManifest, err := e.scanner.Scan(ctx, replica)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Source:  srcManifest,
		Replica: replicaManifest,
		Actions: Diff(srcManifest, replicaManifest),
	}, nil
}

// RunOnce executes one synchronization pass and reports each applied action
// to sink. Scan failures abort the pass before anything is applied and are
// returned. Apply failures are recorded in the report and the pass continues;
// the status is then models.StatusPartial and the returned error is nil.
// Cancellation is honoured between actions.
func (e *Engine) RunOnce(ctx context.Context, source, replica *storage.Tree, sink EventSink) (*models.PassReport, error) {
	if sink == nil {
		sink = nopSink{}
	}

	report := &models.PassReport{
		ID:          uuid.New().String(),
		SourcePath:  source.Root(),
		ReplicaPath: replica.Root(),
		DryRun:      e.opts.DryRun,
		StartTime:   time.Now(),
		Status:      models.StatusSuccess,
	}

	logger := e.logger.WithFields(logging.Fields{"pass_id": report.ID})
	logger.Info(ctx, "Synchronization started", logging.Fields{
		"source":  source.Root(),
		"replica": replica.Root(),
		"dry_run": e.opts.DryRun,
	})

	plan, err := e.Plan(ctx, source, replica)
	if err != nil {
		report.Status = models.StatusFailed
		if ctx.Err() != nil {
			report.Status = models.StatusCancelled
		}
		report.Err = err
		logger.Error(ctx, "Synchronization aborted", err, nil)
		e.finish(ctx, logger, report, sink)
		return report, err
	}

	report.Actions = plan.Actions
	report.Stats.SourceFiles = len(plan.Source.Files)
	report.Stats.SourceDirs = len(plan.Source.Dirs)
	report.Stats.ReplicaFiles = len(plan.Replica.Files)
	report.Stats.ReplicaDirs = len(plan.Replica.Dirs)

	if obs, ok := sink.(PassObserver); ok {
		obs.PassStarted(report.ID, len(plan.Actions))
	}

	if e.opts.DryRun {
		for _, action := range plan.Actions {
			logger.Info(ctx, "[dry-run] would "+string(action.Kind), logging.Fields{"path": action.Path})
		}
		e.finish(ctx, logger, report, sink)
		return report, nil
	}

	applier := NewApplier(source, replica, logger)
	if e.limiter != nil {
		applier.SetReaderWrapper(func(r io.Reader) io.Reader {
			return ratelimit.NewReader(ctx, r, e.limiter)
		})
	}

	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			report.Status = models.StatusCancelled
			report.Err = err
			logger.Warn(ctx, "Synchronization interrupted", logging.Fields{
				"applied":   report.Stats.Applied(),
				"remaining": len(plan.Actions) - report.Stats.Applied() - report.Stats.Failed,
			})
			break
		}

		copied, err := applier.Apply(ctx, action, sink)
		if err != nil {
			e.recordFailure(ctx, logger, report, sink, action, err)
			continue
		}

		report.Stats.Count(action.Kind)
		report.Stats.BytesCopied += copied
	}

	if report.Status == models.StatusSuccess && len(report.Failures) > 0 {
		report.Status = models.StatusPartial
	}

	e.finish(ctx, logger, report, sink)
	if report.Status == models.StatusCancelled {
		return report, report.Err
	}
	return report, nil
}

func (e *Engine) recordFailure(ctx context.Context, logger logging.Logger, report *models.PassReport, sink EventSink, action models.Action, err error) {
	failure := models.Failure{
		Action: action,
		Kind:   models.ClassifyFailure(err),
		Err:    err,
		Time:   time.Now(),
	}
	report.Failures = append(report.Failures, failure)
	report.Stats.Failed++

	logger.Error(ctx, failure.Message(), err, logging.Fields{
		"path":    action.Path,
		"action":  string(action.Kind),
		"failure": string(failure.Kind),
	})

	if rec, ok := sink.(FailureRecorder); ok {
		rec.RecordFailure(failure)
	}
}

func (e *Engine) finish(ctx context.Context, logger logging.Logger, report *models.PassReport, sink EventSink) {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	if obs, ok := sink.(PassObserver); ok {
		obs.PassCompleted(report)
	}

	logger.Info(ctx, "Synchronization ended", logging.Fields{
		"status":   string(report.Status),
		"actions":  len(report.Actions),
		"applied":  report.Stats.Applied(),
		"failed":   report.Stats.Failed,
		"duration": report.Duration.String(),
	})
}
