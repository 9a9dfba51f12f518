package export

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/subjects"
	"github.com/JaimeStill/actigraphy/pkg/storage"
)

// ErrUnknownKind indicates an export name outside Kinds.
var ErrUnknownKind = errors.New("unknown export kind")

// Kind names one export artefact.
type Kind string

const (
	SleepLog      Kind = "sleeplog"
	DataCleaning  Kind = "data_cleaning"
	MultipleSleep Kind = "multiple_sleep"
)

// Kinds lists every export artefact.
var Kinds = []Kind{SleepLog, DataCleaning, MultipleSleep}

// ParseKind validates an export name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Key is the storage key of the artefact for identifier.
func (k Kind) Key(identifier string) string {
	return path.Join(identifier, "logs", fmt.Sprintf("%s_%s.csv", k, identifier))
}

// Write renders the artefact.
func (k Kind) Write(w io.Writer, identifier string, days []sleeptimes.DaySleepTimes) error {
	switch k {
	case SleepLog:
		return WriteSleepLog(w, identifier, days)
	case DataCleaning:
		return WriteDataCleaning(w, identifier, days)
	case MultipleSleep:
		return WriteAllSleepTimes(w, days)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// MapHTTPStatus maps export errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, subjects.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
