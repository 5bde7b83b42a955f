package model

// UploadResult is the per-file outcome of a storage upload: either a URL and
// storage ID, or an error message. Never both.
type UploadResult struct {
	FileName  string `json:"fileName"`
	URL       string `json:"url,omitempty"`
	StorageID string `json:"storageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// OK reports whether the upload succeeded.
func (u UploadResult) OK() bool {
	return u.Error == ""
}

// BatchUploadResult partitions a batch's uploads by outcome. Within each
// partition, results keep the input file order.
type BatchUploadResult struct {
	BatchID    string         `json:"batchId"`
	Successful []UploadResult `json:"successful"`
	Failed     []UploadResult `json:"failed"`
}

// FileStatus tracks a single file's progress through the extraction step.
type FileStatus string

const (
	StatusPending    FileStatus = "pending"
	StatusProcessing FileStatus = "processing"
	StatusSuccess    FileStatus = "success"
	StatusFailed     FileStatus = "failed"
)

// Terminal reports whether no further transition occurs for this file
// within the current batch.
func (s FileStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// ExtractionState is one file's extraction status plus its payload: the
// partial record on success, or a human-readable reason on failure.
type ExtractionState struct {
	Status FileStatus   `json:"status"`
	Record *PlantRecord `json:"record,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// FileOutcome is the end-to-end result for one file in a batch, reported
// back to the user after upload, extraction, and save have all settled.
type FileOutcome struct {
	FileName string       `json:"fileName"`
	Stage    string       `json:"stage"` // "validate", "upload", "extract", "save"
	Status   FileStatus   `json:"status"`
	Record   *PlantRecord `json:"record,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// BatchSummary aggregates per-file outcomes for one submitted batch.
type BatchSummary struct {
	BatchID  string        `json:"batchId"`
	Saved    int           `json:"saved"`
	Failed   int           `json:"failed"`
	Rejected int           `json:"rejected"`
	Outcomes []FileOutcome `json:"outcomes"`
}
