package loadcaptures

import "docgen-workers/internal/models"

type Input struct {
	JobID string `json:"job_id"`
}

type Output struct {
	Captures     []models.Capture `json:"captures"`
	CaptureCount int              `json:"capture_count"`
}
