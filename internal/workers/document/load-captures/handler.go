package loadcaptures

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"docgen-workers/internal/common/camunda"
	apperrors "docgen-workers/internal/common/errors"
	"docgen-workers/internal/common/logger"
	"docgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "load-captures"
)

const capturesQuery = `
SELECT type, signed_url, ocr_text, created_at, transcript, transcription, text_content
FROM captures
WHERE job_id = $1
ORDER BY created_at, id`

type Handler struct {
	config     *Config
	db         *sql.DB
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return h.failJob(client, job, apperrors.NewInputParsingError(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		return h.failJob(client, job, err)
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.JobID == "" {
		return nil, apperrors.NewInputParsingError(fmt.Errorf("job_id is required"))
	}

	rows, err := h.db.QueryContext(ctx, capturesQuery, input.JobID)
	if err != nil {
		return nil, apperrors.NewCaptureLookupFailedError(input.JobID, err)
	}
	defer rows.Close()

	captures := []models.Capture{}
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, apperrors.NewCaptureLookupFailedError(input.JobID, err)
		}
		captures = append(captures, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewCaptureLookupFailedError(input.JobID, err)
	}

	h.logger.Debug("captures loaded", map[string]interface{}{
		"jobId": input.JobID,
		"count": len(captures),
	})
	return &Output{Captures: captures, CaptureCount: len(captures)}, nil
}

func scanCapture(rows *sql.Rows) (models.Capture, error) {
	var (
		captureType                     string
		signedURL, ocrText, textContent sql.NullString
		transcript, transcription       sql.NullString
		createdAt                       sql.NullTime
	)
	if err := rows.Scan(&captureType, &signedURL, &ocrText, &createdAt, &transcript, &transcription, &textContent); err != nil {
		return models.Capture{}, err
	}

	c := models.Capture{
		Type:          models.CaptureType(captureType),
		SignedURL:     signedURL.String,
		OCRText:       ocrText.String,
		Transcript:    transcript.String,
		Transcription: transcription.String,
		TextContent:   textContent.String,
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339)
	}
	return c, nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) error {
	if sendErr := h.errHandler.HandleJobError(context.Background(), client, job, err); sendErr != nil {
		h.logger.Error("failed to report job error", map[string]interface{}{
			"jobKey": job.Key,
			"error":  sendErr.Error(),
		})
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
