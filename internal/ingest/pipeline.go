// Package ingest normalizes GGIR output into subjects, days, sleep windows
// and samples.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/actigraphy/internal/subjects"
)

// Pipeline reads one recording and persists it as a new subject.
type Pipeline struct {
	subjects     subjects.System
	defaultSleep time.Duration
	logger       *slog.Logger
}

// NewPipeline creates a Pipeline writing through subjects. defaultSleep is
// the time of day of synthesized windows.
func NewPipeline(subjects subjects.System, defaultSleep time.Duration, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		subjects:     subjects,
		defaultSleep: defaultSleep,
		logger:       logger.With("system", "ingest"),
	}
}

// Exists reports whether a subject is already imported.
func (p *Pipeline) Exists(ctx context.Context, identifier string) (bool, error) {
	return p.subjects.Exists(ctx, identifier)
}

// Initialize imports one subject. The caller decides whether an existing
// subject should be skipped; a duplicate surfaces as subjects.ErrDuplicate.
func (p *Pipeline) Initialize(
	ctx context.Context,
	identifier string,
	meta MetadataSource,
	nights NightSummarySource,
) (*subjects.Subject, error) {
	start := time.Now()

	m, err := meta.Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	ns, err := nights.Nights(ctx)
	if err != nil {
		return nil, fmt.Errorf("read night summary: %w", err)
	}

	cmd, err := Build(identifier, m, ns, p.defaultSleep)
	if err != nil {
		return nil, err
	}

	s, err := p.subjects.Create(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("create subject %s: %w", identifier, err)
	}

	p.logger.Info(
		"subject imported",
		"identifier", identifier,
		"days", len(cmd.Days),
		"data_points", len(cmd.DataPoints),
		"elapsed", time.Since(start),
	)
	return s, nil
}
