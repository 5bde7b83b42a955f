// Package pipeline coordinates the upload → extract → save workflow for
// batches of geo-tagged crop images.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrisight/plantmap-cli/internal/model"
	"github.com/agrisight/plantmap-cli/internal/store"
	"github.com/agrisight/plantmap-cli/pkg/extract"
	"github.com/agrisight/plantmap-cli/pkg/storage"
)

// Pipeline wires the three coordinators over one shared status tracker.
type Pipeline struct {
	uploads  *UploadCoordinator
	extracts *ExtractCoordinator
	saves    *SaveCoordinator
	tracker  *StatusTracker

	concurrency int
}

// New creates a pipeline. concurrency bounds in-flight uploads and
// extractions per batch.
func New(sc storage.Client, ec extract.Client, st *store.PlantStore, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = 4
	}
	tracker := NewStatusTracker()
	return &Pipeline{
		uploads:     NewUploadCoordinator(sc, concurrency),
		extracts:    NewExtractCoordinator(ec, tracker),
		saves:       NewSaveCoordinator(st),
		tracker:     tracker,
		concurrency: concurrency,
	}
}

// Tracker exposes the per-file status map for display.
func (p *Pipeline) Tracker() *StatusTracker {
	return p.tracker
}

// ProcessBatch runs one batch end to end: validate, upload all files
// concurrently, extract coordinates for every stored file concurrently,
// then save the extracted records sequentially. Saves are awaited before
// the batch is declared complete, so a save failure is reported with the
// batch rather than racing it. Per-file failures never abort siblings; the
// returned summary carries one outcome per input file. An entirely empty
// input is the only whole-batch error.
func (p *Pipeline) ProcessBatch(ctx context.Context, files []CandidateFile) (*model.BatchSummary, error) {
	if len(files) == 0 {
		return nil, eris.New("pipeline: no files selected")
	}

	summary := &model.BatchSummary{BatchID: uuid.New().String()}
	log := zap.L().With(zap.String("batch", summary.BatchID))

	// Validation happens before any network call; rejected files are
	// reported individually and never submitted.
	valid := make([]CandidateFile, 0, len(files))
	for _, f := range files {
		if err := ValidateFile(f); err != nil {
			summary.Rejected++
			summary.Outcomes = append(summary.Outcomes, model.FileOutcome{
				FileName: f.Name,
				Stage:    "validate",
				Status:   model.StatusFailed,
				Error:    err.Error(),
			})
			continue
		}
		valid = append(valid, f)
	}
	if len(valid) == 0 {
		log.Info("batch rejected in validation", zap.Int("files", len(files)))
		return summary, nil
	}

	p.tracker.Reset()
	for _, f := range valid {
		p.tracker.MarkPending(f.Name)
	}

	uploads, err := p.uploads.SubmitBatch(ctx, valid)
	if err != nil {
		return nil, err
	}
	uploads.BatchID = summary.BatchID

	for _, u := range uploads.Failed {
		p.tracker.MarkFailed(u.FileName, u.Error)
		summary.Failed++
		summary.Outcomes = append(summary.Outcomes, model.FileOutcome{
			FileName: u.FileName,
			Stage:    "upload",
			Status:   model.StatusFailed,
			Error:    u.Error,
		})
	}

	// Extractions run concurrently; each file's status transitions are
	// tracked independently by name.
	records := make([]*model.PlantRecord, len(uploads.Successful))
	extractErrs := make([]error, len(uploads.Successful))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, u := range uploads.Successful {
		g.Go(func() error {
			records[i], extractErrs[i] = p.extracts.Extract(gctx, u.FileName, u.URL)
			return nil
		})
	}
	_ = g.Wait()

	// Saves are awaited sequentially so the batch result reflects every
	// save outcome.
	for i, u := range uploads.Successful {
		if extractErrs[i] != nil {
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, model.FileOutcome{
				FileName: u.FileName,
				Stage:    "extract",
				Status:   model.StatusFailed,
				Error:    extractErrs[i].Error(),
			})
			continue
		}

		saved, err := p.saves.Save(ctx, *records[i])
		if err != nil {
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, model.FileOutcome{
				FileName: u.FileName,
				Stage:    "save",
				Status:   model.StatusFailed,
				Error:    err.Error(),
			})
			continue
		}

		summary.Saved++
		summary.Outcomes = append(summary.Outcomes, model.FileOutcome{
			FileName: u.FileName,
			Stage:    "save",
			Status:   model.StatusSuccess,
			Record:   &saved,
		})
	}

	log.Info("batch complete",
		zap.Int("saved", summary.Saved),
		zap.Int("failed", summary.Failed),
		zap.Int("rejected", summary.Rejected),
	)
	return summary, nil
}
