package types

import "time"

// EntryStatus is the terminal status of one file entry in a run.
type EntryStatus string

const (
	StatusSucceeded EntryStatus = "succeeded"
	StatusSkipped   EntryStatus = "skipped"
	StatusFailed    EntryStatus = "failed"
)

// Error kinds reported for failed entries.
const (
	ErrKindTransient        = "transient"
	ErrKindPermanent        = "permanent"
	ErrKindSizeMismatch     = "size_mismatch"
	ErrKindChecksumMismatch = "checksum_mismatch"
	ErrKindMissing          = "missing"
	ErrKindCanceled         = "canceled"
)

// EntryResult is the terminal outcome for one file entry.
type EntryResult struct {
	// Model the entry belongs to.
	// example: mobilenet-v2
	Model string `json:"model"`
	// Declared relative path of the artifact.
	// example: FP32/mobilenet-v2.xml
	RelativePath string `json:"relative_path"`
	// Terminal status: succeeded, skipped, or failed.
	Status EntryStatus `json:"status"`
	// Bytes actually transferred from the network for this entry.
	// Zero for skipped entries.
	BytesFetched int64 `json:"bytes_fetched"`
	// Number of fetch attempts made (0 for skipped entries).
	Attempts int `json:"attempts"`
	// Error kind for failed entries (transient, permanent, size_mismatch,
	// checksum_mismatch, missing, canceled). Empty otherwise.
	ErrorKind string `json:"error_kind,omitempty"`
	// Human-readable error detail, e.g. expected vs actual digest.
	ErrorDetail string `json:"error_detail,omitempty"`
}

// RunReport is the aggregate outcome of one orchestrator run. It covers
// every requested entry; callers map Failed==0 to exit code 0.
type RunReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// Per-entry terminal results, sorted by model then relative path.
	Entries []EntryResult `json:"entries"`
	// Aggregate counters.
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	// Total bytes transferred from the network during the run.
	BytesFetched int64 `json:"bytes_fetched"`
}

// OK reports whether every entry succeeded or was skipped.
func (r RunReport) OK() bool { return r.Failed == 0 }
