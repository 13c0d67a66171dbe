package models

// IngestJob is the SQS message body for an asynchronous ingestion run.
type IngestJob struct {
	JobID      string   `json:"job_id"`
	Players    []string `json:"players"`
	StartMonth string   `json:"start_month,omitempty"` // "YYYY/MM", empty means unbounded
	EndMonth   string   `json:"end_month,omitempty"`
}
