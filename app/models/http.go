package models

// CreateJobRequest is the body of POST /jobs.
type CreateJobRequest struct {
	Players    []string `json:"players" binding:"required,min=1"`
	StartMonth string   `json:"start_month"`
	EndMonth   string   `json:"end_month"`
}
