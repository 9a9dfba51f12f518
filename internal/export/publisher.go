package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/subjects"
	"github.com/JaimeStill/actigraphy/pkg/storage"
)

// ContentType is the media type of every artefact.
const ContentType = "text/csv"

// Publisher renders artefacts from the database and uploads them.
type Publisher struct {
	storage    storage.System
	subjects   subjects.System
	sleeptimes sleeptimes.System
	logger     *slog.Logger
}

// NewPublisher creates a Publisher writing to store.
func NewPublisher(
	store storage.System,
	subjects subjects.System,
	sleeptimes sleeptimes.System,
	logger *slog.Logger,
) *Publisher {
	return &Publisher{
		storage:    store,
		subjects:   subjects,
		sleeptimes: sleeptimes,
		logger:     logger.With("system", "export"),
	}
}

// Render loads the current windows of identifier and renders kind.
func (p *Publisher) Render(ctx context.Context, identifier string, kind Kind) ([]byte, error) {
	days, err := p.load(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return render(identifier, kind, days)
}

// Publish renders and uploads each kind, replacing earlier versions.
func (p *Publisher) Publish(ctx context.Context, identifier string, kinds ...Kind) error {
	if len(kinds) == 0 {
		return nil
	}

	days, err := p.load(ctx, identifier)
	if err != nil {
		return err
	}

	for _, kind := range kinds {
		data, err := render(identifier, kind, days)
		if err != nil {
			return err
		}

		key := kind.Key(identifier)
		if err := p.storage.Upload(ctx, key, bytes.NewReader(data), ContentType); err != nil {
			return fmt.Errorf("publish %s: %w", kind, err)
		}
		p.logger.Debug("export published", "subject", identifier, "kind", kind, "key", key)
	}

	return nil
}

// Remove deletes every published artefact of identifier.
func (p *Publisher) Remove(ctx context.Context, identifier string) error {
	var errs []error
	for _, kind := range Kinds {
		err := p.storage.Delete(ctx, kind.Key(identifier))
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			errs = append(errs, fmt.Errorf("remove %s: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) load(ctx context.Context, identifier string) ([]sleeptimes.DaySleepTimes, error) {
	s, err := p.subjects.Find(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("find subject %s: %w", identifier, err)
	}

	days, err := p.sleeptimes.ListBySubject(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("list sleep times of %s: %w", identifier, err)
	}
	return days, nil
}

func render(identifier string, kind Kind, days []sleeptimes.DaySleepTimes) ([]byte, error) {
	var buf bytes.Buffer
	if err := kind.Write(&buf, identifier, days); err != nil {
		return nil, fmt.Errorf("render %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}
