package callvisionmodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"docgen-workers/internal/common/camunda"
	apperrors "docgen-workers/internal/common/errors"
	"docgen-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	openai "github.com/openai/openai-go"
)

const (
	TaskType = "call-vision-model"
)

var (
	ErrMissingRequest = errors.New("chat_request is required")
	ErrEmptyResponse  = errors.New("model endpoint returned an empty body")
)

type Handler struct {
	config     *Config
	client     Poster
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, client Poster, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		client:     client,
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
	if input.ChatRequest == nil {
		return nil, apperrors.NewInputParsingError(ErrMissingRequest)
	}

	start := time.Now()
	var raw json.RawMessage
	if err := h.client.Post(ctx, completionsPath, input.ChatRequest, &raw); err != nil {
		return nil, h.classify(ctx, err)
	}
	if len(raw) == 0 {
		return nil, apperrors.NewModelCallFailedError(ErrEmptyResponse)
	}

	h.logger.Info("model call completed", map[string]interface{}{
		"model":      input.ChatRequest.Model,
		"durationMs": time.Since(start).Milliseconds(),
		"bytes":      len(raw),
	})
	return &Output{ChatResponse: raw}, nil
}

// classify maps transport and API errors onto job error codes. 408 and 429
// are treated as transient.
func (h *Handler) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewModelCallTimeoutError(err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		h.logger.Warn("model endpoint returned error status", map[string]interface{}{
			"status": status,
			"error":  err.Error(),
		})
		if status >= 400 && status < 500 && status != http.StatusRequestTimeout && status != http.StatusTooManyRequests {
			return apperrors.NewModelCallRejectedError(status, fmt.Errorf("model endpoint: %w", err))
		}
	}
	return apperrors.NewModelCallFailedError(err)
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
