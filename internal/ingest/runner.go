package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Failure records why one subject directory could not be imported.
type Failure struct {
	Dir    string `json:"dir"`
	Reason string `json:"reason"`
}

// Report summarizes one batch run.
type Report struct {
	RunID   uuid.UUID `json:"run_id"`
	Created []string  `json:"created"`
	Skipped []string  `json:"skipped"`
	Failed  []Failure `json:"failed"`
}

// Runner imports every subject directory under a data directory.
type Runner struct {
	pipeline *Pipeline
	workers  int
	logger   *slog.Logger
}

// NewRunner creates a Runner processing at most workers subjects at once.
func NewRunner(pipeline *Pipeline, workers int, logger *slog.Logger) *Runner {
	return &Runner{
		pipeline: pipeline,
		workers:  max(workers, 1),
		logger:   logger.With("system", "ingest-runner"),
	}
}

// Run imports the subject directory named identifier, or every output_*
// directory when identifier is empty. Per-subject failures are recorded in
// the report and do not stop the batch; only cancellation aborts it.
func (r *Runner) Run(ctx context.Context, dataDir, identifier string) (*Report, error) {
	report := &Report{
		RunID:   uuid.New(),
		Created: []string{},
		Skipped: []string{},
		Failed:  []Failure{},
	}
	logger := r.logger.With("run_id", report.RunID)

	dirs, err := subjectDirs(dataDir, identifier)
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		logger.Warn("no subject directories found", "data_dir", dataDir)
		return report, nil
	}
	logger.Info("processing subjects", "count", len(dirs), "workers", r.workers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, dir := range dirs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			outcome, name, err := r.process(gctx, logger, dir)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeCreated:
				report.Created = append(report.Created, name)
			case outcomeSkipped:
				report.Skipped = append(report.Skipped, name)
			case outcomeFailed:
				logger.Error("subject import failed", "dir", dir, "error", err)
				report.Failed = append(report.Failed, Failure{Dir: dir, Reason: err.Error()})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("ingest run %s: %w", report.RunID, err)
	}

	slices.Sort(report.Created)
	slices.Sort(report.Skipped)
	slices.SortFunc(report.Failed, func(a, b Failure) int { return strings.Compare(a.Dir, b.Dir) })

	logger.Info(
		"run complete",
		"created", len(report.Created),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	return report, nil
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (r *Runner) process(ctx context.Context, logger *slog.Logger, dir string) (outcome, string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return outcomeFailed, dir, err
	}
	if !info.IsDir() {
		logger.Warn("not a directory, skipping", "path", dir)
		return outcomeSkipped, dir, nil
	}

	layout, err := ResolveLayout(dir)
	if err != nil {
		return outcomeFailed, dir, err
	}

	exists, err := r.pipeline.Exists(ctx, layout.Identifier)
	if err != nil {
		return outcomeFailed, layout.Identifier, err
	}
	if exists {
		logger.Info("subject already imported, skipping", "identifier", layout.Identifier)
		return outcomeSkipped, layout.Identifier, nil
	}

	meta, nights := layout.Sources()
	if _, err := r.pipeline.Initialize(ctx, layout.Identifier, meta, nights); err != nil {
		return outcomeFailed, layout.Identifier, err
	}
	return outcomeCreated, layout.Identifier, nil
}

func subjectDirs(dataDir, identifier string) ([]string, error) {
	if identifier != "" {
		return []string{filepath.Join(dataDir, identifier)}, nil
	}

	dirs, err := filepath.Glob(filepath.Join(dataDir, SubjectDirPattern))
	if err != nil {
		return nil, fmt.Errorf("list subject directories: %w", err)
	}
	return dirs, nil
}
