package models

// RunStatus represents the status of a match run.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusMatching RunStatus = "matching"
	RunStatusComplete RunStatus = "complete"
	RunStatusError    RunStatus = "error"
)

// MatchRun represents one asynchronous matching run over an uploaded batch.
type MatchRun struct {
	ID               string      `json:"id"`
	FileIDs          []string    `json:"fileIds"`
	Status           RunStatus   `json:"status"`
	Progress         float64     `json:"progress"` // 0-100
	Stats            *MatchStats `json:"stats,omitempty"`
	ProcessingTimeMs int64       `json:"processingTimeMs,omitempty"`
	StartedAt        int64       `json:"startedAt,omitempty"` // Unix ms
	Errors           []RunError  `json:"errors,omitempty"`
}

// RunError represents a problem encountered while preparing or executing a run.
type RunError struct {
	FileID string `json:"fileId,omitempty"`
	Reason string `json:"reason"`
}

// Clone returns a deep copy of the run, safe to read and serialize while
// the original advances in the background.
func (r *MatchRun) Clone() *MatchRun {
	c := *r
	c.FileIDs = append([]string(nil), r.FileIDs...)
	c.Errors = append([]RunError(nil), r.Errors...)
	if r.Stats != nil {
		stats := *r.Stats
		c.Stats = &stats
	}
	return &c
}

// NewMatchRun creates a new MatchRun in pending status.
func NewMatchRun(id string, fileIDs []string) *MatchRun {
	return &MatchRun{
		ID:      id,
		FileIDs: fileIDs,
		Status:  RunStatusPending,
		Errors:  make([]RunError, 0),
	}
}
