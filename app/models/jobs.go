package models

import "time"

const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// JobStatus summarizes an ingestion job.
type JobStatus struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Players     []string  `json:"players"`
	GamesLoaded int       `json:"games_loaded"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Event types carried by IngestEvent.Type.
const (
	EventIngestCompleted = "ingest.completed"
	EventIngestFailed    = "ingest.failed"
)

// IngestEvent is published when a job finishes.
type IngestEvent struct {
	Type     string   `json:"type"`
	JobID    string   `json:"job_id"`
	Status   string   `json:"status"`
	Players  []string `json:"players"`
	Profiles int      `json:"profiles"`
	Games    int      `json:"games"`
	Error    string   `json:"error,omitempty"`
}
