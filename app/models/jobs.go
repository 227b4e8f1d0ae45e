package models

// JobMessage asks a worker to evaluate a PGN file or directory.
type JobMessage struct {
	JobID string `json:"job_id"` // optional, for progress tracking
	Path  string `json:"path"`
}
