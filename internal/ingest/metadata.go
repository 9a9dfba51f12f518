package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/JaimeStill/actigraphy/internal/datapoints"
	"github.com/JaimeStill/actigraphy/internal/nonwear"
	"github.com/JaimeStill/actigraphy/pkg/storage"
)

// TimestampLayout is the layout of metashort timestamps.
const TimestampLayout = "2006-01-02T15:04:05-0700"

// Metadata is the column-oriented GGIR summary of one recording.
type Metadata struct {
	WindowSizes []int     `json:"windowsizes"`
	MetaShort   MetaShort `json:"metashort"`
	MetaLong    MetaLong  `json:"metalong"`
}

// MetaShort holds the fine-grained epoch series.
type MetaShort struct {
	Timestamp []string  `json:"timestamp"`
	AngleZ    []float64 `json:"anglez"`
	ENMO      []float64 `json:"ENMO"`
}

// MetaLong holds the coarse-grained epoch series.
type MetaLong struct {
	NonWearScore []float64 `json:"nonwearscore"`
}

// MetadataSource yields the metadata of one recording.
type MetadataSource interface {
	Metadata(ctx context.Context) (*Metadata, error)
}

// JSONMetadata reads a metadata bundle from a file.
type JSONMetadata struct {
	Path string
}

func (s JSONMetadata) Metadata(ctx context.Context) (*Metadata, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()
	return DecodeMetadata(f)
}

// StoredMetadata reads a metadata bundle from blob storage.
type StoredMetadata struct {
	Storage storage.System
	Key     string
}

func (s StoredMetadata) Metadata(ctx context.Context) (*Metadata, error) {
	blob, err := s.Storage.Download(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("download metadata: %w", err)
	}
	defer blob.Body.Close()
	return DecodeMetadata(blob.Body)
}

// DecodeMetadata decodes and validates a metadata bundle.
func DecodeMetadata(r io.Reader) (*Metadata, error) {
	var m Metadata
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, &ParseError{Field: "metadata", Err: err}
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Metadata) validate() error {
	if len(m.WindowSizes) < 2 {
		return &ParseError{
			Field: "windowsizes",
			Err:   fmt.Errorf("want at least 2 values, got %d", len(m.WindowSizes)),
		}
	}
	for i, ws := range m.WindowSizes[:2] {
		if ws <= 0 {
			return &ParseError{
				Field: fmt.Sprintf("windowsizes[%d]", i),
				Err:   fmt.Errorf("must be positive, got %d", ws),
			}
		}
	}

	n := len(m.MetaShort.Timestamp)
	if n == 0 {
		return &ParseError{Field: "metashort.timestamp", Err: ErrNoSamples}
	}
	if len(m.MetaShort.AngleZ) != n {
		return &ParseError{
			Field: "metashort.anglez",
			Err:   fmt.Errorf("%w: %d values for %d timestamps", ErrLengthMismatch, len(m.MetaShort.AngleZ), n),
		}
	}
	if len(m.MetaShort.ENMO) != n {
		return &ParseError{
			Field: "metashort.ENMO",
			Err:   fmt.Errorf("%w: %d values for %d timestamps", ErrLengthMismatch, len(m.MetaShort.ENMO), n),
		}
	}
	return nil
}

// PointsPerDay is the number of fine epochs in 24 hours.
func (m *Metadata) PointsPerDay() int {
	return 86400 / m.WindowSizes[0]
}

// Timestamps parses every metashort timestamp, keeping its recorded offset.
func (m *Metadata) Timestamps() ([]time.Time, error) {
	out := make([]time.Time, len(m.MetaShort.Timestamp))
	for i, s := range m.MetaShort.Timestamp {
		t, err := time.Parse(TimestampLayout, s)
		if err != nil {
			return nil, &ParseError{Field: fmt.Sprintf("metashort.timestamp[%d]", i), Err: err}
		}
		out[i] = t
	}
	return out, nil
}

// DataPoints converts the metashort series into samples. Coarse windows
// with a non-wear score above 1 flag every fine sample they cover.
func (m *Metadata) DataPoints(timestamps []time.Time) []datapoints.DataPoint {
	ratio := m.WindowSizes[1] / m.WindowSizes[0]
	flags := nonwear.Expand(m.MetaLong.NonWearScore, ratio, len(timestamps))

	points := make([]datapoints.DataPoint, len(timestamps))
	for i, ts := range timestamps {
		_, offset := ts.Zone()
		points[i] = datapoints.DataPoint{
			Timestamp:          ts.UTC(),
			TimestampUTCOffset: offset,
			SensorAngle:        m.MetaShort.AngleZ[i],
			SensorAcceleration: m.MetaShort.ENMO[i],
			NonWear:            flags[i],
		}
	}
	return points
}
