package pipeline

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/agrisight/plantmap-cli/internal/model"
	"github.com/agrisight/plantmap-cli/pkg/extract"
)

// StatusTracker keeps per-file extraction status for the current batch,
// keyed by file name. Updates are last-write-wins per key and never touch
// other keys, so concurrent extractions cannot cross-contaminate. The map
// lives for one batch and is cleared when the next begins.
type StatusTracker struct {
	mu       sync.RWMutex
	statuses map[string]model.ExtractionState
}

// NewStatusTracker creates an empty tracker.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{statuses: make(map[string]model.ExtractionState)}
}

// Reset clears all statuses at the start of a new batch.
func (t *StatusTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses = make(map[string]model.ExtractionState)
}

// MarkPending records that a file is queued for extraction.
func (t *StatusTracker) MarkPending(fileName string) {
	t.set(fileName, model.ExtractionState{Status: model.StatusPending})
}

// MarkProcessing records that a file's extraction request is in flight.
func (t *StatusTracker) MarkProcessing(fileName string) {
	t.set(fileName, model.ExtractionState{Status: model.StatusProcessing})
}

// MarkSuccess records a terminal success with the partial record attached.
func (t *StatusTracker) MarkSuccess(fileName string, rec model.PlantRecord) {
	t.set(fileName, model.ExtractionState{Status: model.StatusSuccess, Record: &rec})
}

// MarkFailed records a terminal failure with a human-readable reason.
func (t *StatusTracker) MarkFailed(fileName, reason string) {
	t.set(fileName, model.ExtractionState{Status: model.StatusFailed, Reason: reason})
}

func (t *StatusTracker) set(fileName string, st model.ExtractionState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[fileName] = st
}

// Get returns the current state for a file.
func (t *StatusTracker) Get(fileName string) (model.ExtractionState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.statuses[fileName]
	return st, ok
}

// All returns a copy of every tracked status.
func (t *StatusTracker) All() map[string]model.ExtractionState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]model.ExtractionState, len(t.statuses))
	for k, v := range t.statuses {
		out[k] = v
	}
	return out
}

// ExtractCoordinator drives the extraction collaborator for uploaded files
// and records every transition in the tracker.
type ExtractCoordinator struct {
	client  extract.Client
	tracker *StatusTracker
}

// NewExtractCoordinator creates an extraction coordinator writing to tracker.
func NewExtractCoordinator(client extract.Client, tracker *StatusTracker) *ExtractCoordinator {
	return &ExtractCoordinator{client: client, tracker: tracker}
}

// Extract requests coordinates for one uploaded file. The file's status
// moves to processing before the network call starts, then to exactly one
// terminal state. Collaborator failures, malformed responses, and transport
// errors all resolve to the failed state with a typed error; nothing
// escapes uncaught, so the batch continues with its other files.
func (c *ExtractCoordinator) Extract(ctx context.Context, fileName, storageURL string) (*model.PlantRecord, error) {
	c.tracker.MarkProcessing(fileName)

	loc, err := c.client.Extract(ctx, fileName, storageURL)
	if err != nil {
		terr := classifyExtractErr(err)
		c.tracker.MarkFailed(fileName, terr.Error())
		zap.L().Warn("extraction failed", zap.String("file", fileName), zap.Error(err))
		return nil, terr
	}

	rec := model.PlantRecord{
		ImageName: fileName,
		ImageURL:  storageURL,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}
	if !rec.HasCoordinates() {
		derr := &model.DataError{Collaborator: "extraction", Msg: "coordinates out of range"}
		c.tracker.MarkFailed(fileName, derr.Error())
		return nil, derr
	}

	c.tracker.MarkSuccess(fileName, rec)
	return &rec, nil
}

// classifyExtractErr maps client errors onto the error taxonomy: responses
// that arrived but carried no usable data are DataErrors, everything else
// is a NetworkError.
func classifyExtractErr(err error) error {
	if errors.Is(err, extract.ErrNoCoordinates) {
		return &model.DataError{Collaborator: "extraction", Msg: "response missing coordinates"}
	}
	if errors.Is(err, extract.ErrNotSuccessful) {
		return &model.DataError{Collaborator: "extraction", Msg: "service could not extract a location"}
	}
	return &model.NetworkError{Collaborator: "extraction", Err: err}
}
