package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrisight/plantmap-cli/internal/model"
	"github.com/agrisight/plantmap-cli/pkg/storage"
)

// MaxFileSize is the per-file upload limit.
const MaxFileSize = 10 << 20 // 10 MB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// CandidateFile is one user-selected file. Raw bytes stay here, outside the
// status tree: status maps carry only file names and enums.
type CandidateFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// LoadCandidate reads a file from disk and sniffs its content type.
func LoadCandidate(path string) (CandidateFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CandidateFile{}, eris.Wrapf(err, "upload: read %s", path)
	}
	return CandidateFile{
		Name:        filepath.Base(path),
		ContentType: sniffContentType(path, data),
		Data:        data,
	}, nil
}

// sniffContentType prefers content sniffing, falling back to the extension
// for formats http.DetectContentType reports as octet-stream.
func sniffContentType(path string, data []byte) string {
	ct := http.DetectContentType(data)
	if ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return ct
}

// ValidateFile checks type and size before any network call.
func ValidateFile(f CandidateFile) error {
	if !allowedImageTypes[f.ContentType] {
		return &model.ValidationError{
			FileName: f.Name,
			Msg:      fmt.Sprintf("unsupported file type %q (want image/jpeg or image/png)", f.ContentType),
		}
	}
	if len(f.Data) > MaxFileSize {
		return &model.ValidationError{
			FileName: f.Name,
			Msg:      fmt.Sprintf("file is %.1f MB, limit is 10 MB", float64(len(f.Data))/(1<<20)),
		}
	}
	return nil
}

// UploadCoordinator validates candidate files and submits them to the
// storage collaborator.
type UploadCoordinator struct {
	storage     storage.Client
	concurrency int
}

// NewUploadCoordinator creates an upload coordinator. concurrency bounds the
// number of in-flight uploads per batch.
func NewUploadCoordinator(sc storage.Client, concurrency int) *UploadCoordinator {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &UploadCoordinator{storage: sc, concurrency: concurrency}
}

// SubmitBatch uploads every file concurrently and waits for all of them to
// settle. The result partitions per-file outcomes by success/failure,
// preserving input order within each partition; an individual failure never
// cancels sibling uploads. Only a malformed batch (no files) rejects the
// operation as a whole, and that happens before any child is started.
func (c *UploadCoordinator) SubmitBatch(ctx context.Context, files []CandidateFile) (*model.BatchUploadResult, error) {
	if len(files) == 0 {
		return nil, eris.New("upload: empty batch")
	}

	results := make([]model.UploadResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, f := range files {
		g.Go(func() error {
			resp, err := c.storage.Upload(gctx, storage.Object{
				Name:        f.Name,
				ContentType: f.ContentType,
				Data:        f.Data,
			})
			if err != nil {
				zap.L().Warn("upload failed", zap.String("file", f.Name), zap.Error(err))
				results[i] = model.UploadResult{FileName: f.Name, Error: err.Error()}
				return nil // per-file failures are isolated, never abort siblings
			}
			results[i] = model.UploadResult{FileName: f.Name, URL: resp.URL, StorageID: resp.ID}
			return nil
		})
	}
	// Children never return errors; Wait only gathers completion.
	_ = g.Wait()

	out := &model.BatchUploadResult{}
	for _, r := range results {
		if r.OK() {
			out.Successful = append(out.Successful, r)
		} else {
			out.Failed = append(out.Failed, r)
		}
	}
	return out, nil
}
