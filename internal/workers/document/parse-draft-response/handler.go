package parsedraftresponse

import (
	"context"
	"encoding/json"

	"docgen-workers/internal/common/camunda"
	apperrors "docgen-workers/internal/common/errors"
	"docgen-workers/internal/common/logger"
	"docgen-workers/internal/common/metrics"
	"docgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType         = "parse-draft-response"
	UntaggedTaskType = "parse-draft-response-untagged"
)

type Handler struct {
	config     *Config
	variant    Variant
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, variant Variant, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": variant.TaskType()})
	return &Handler{
		config:     config,
		variant:    variant,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

// TaskType is the Zeebe job type served by the variant.
func (v Variant) TaskType() string {
	if v == Untagged {
		return UntaggedTaskType
	}
	return TaskType
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	resp, err := DecodeResponse(input.ChatResponse)
	if err != nil {
		return nil, err
	}

	includesLineItems := false
	if template, err := models.NormalizeTemplate(input.PromptTemplate); err != nil {
		h.logger.Warn("prompt template unreadable, ignoring", map[string]interface{}{"error": err.Error()})
	} else if template != nil {
		includesLineItems = template.IncludesLineItems
	}

	jobID := input.jobID()
	if h.variant == Tagged && jobID == "" {
		h.logger.Warn("no job id available for tagged draft", nil)
	}

	doc := BuildDraft(resp, jobID, h.variant)
	metrics.ModelTokensUsed.Add(float64(doc.TokensUsed))

	h.logger.Debug("draft parsed", map[string]interface{}{
		"jobId":             jobID,
		"tokensUsed":        doc.TokensUsed,
		"markdownBytes":     len(doc.Markdown),
		"includesLineItems": includesLineItems,
	})
	return &Output{DraftDocument: doc}, nil
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
