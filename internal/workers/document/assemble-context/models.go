package assemblecontext

import "docgen-workers/internal/models"

// Input carries the webhook job id and the captures loaded for it.
type Input struct {
	JobID    string           `json:"job_id"`
	Captures []models.Capture `json:"captures"`
}

type Output struct {
	AssembledContext *models.AssembledContext `json:"assembled_context"`
}
