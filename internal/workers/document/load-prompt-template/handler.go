package loadprompttemplate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"docgen-workers/internal/common/camunda"
	apperrors "docgen-workers/internal/common/errors"
	"docgen-workers/internal/common/logger"
	"docgen-workers/internal/common/metrics"
	"docgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "load-prompt-template"
)

const templateQuery = `SELECT id, system_prompt, includes_line_items FROM prompt_templates WHERE id = $1`

type Handler struct {
	config     *Config
	db         *sql.DB
	redis      *redis.Client
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		redis:      redisClient,
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
	if input.TemplateID == "" {
		return nil, apperrors.NewInputParsingError(fmt.Errorf("template_id is required"))
	}

	if t := h.getCached(ctx, input.TemplateID); t != nil {
		return &Output{PromptTemplate: t, CacheHit: true}, nil
	}

	var t models.PromptTemplate
	err := h.db.QueryRowContext(ctx, templateQuery, input.TemplateID).Scan(&t.ID, &t.SystemPrompt, &t.IncludesLineItems)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewTemplateNotFoundError(input.TemplateID)
		}
		return nil, apperrors.NewTemplateLookupFailedError(input.TemplateID, err)
	}

	h.setCached(ctx, &t)
	return &Output{PromptTemplate: &t}, nil
}

// getCached returns nil on miss or any cache failure; the database is the
// source of truth.
func (h *Handler) getCached(ctx context.Context, id string) *models.PromptTemplate {
	if h.redis == nil {
		return nil
	}

	val, err := h.redis.Get(ctx, h.config.KeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.TemplateCacheLookups.WithLabelValues("miss").Inc()
		} else {
			metrics.TemplateCacheLookups.WithLabelValues("error").Inc()
			h.logger.Warn("template cache read failed", map[string]interface{}{"templateId": id, "error": err.Error()})
		}
		return nil
	}

	var t models.PromptTemplate
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		metrics.TemplateCacheLookups.WithLabelValues("error").Inc()
		h.logger.Warn("template cache entry corrupt", map[string]interface{}{"templateId": id, "error": err.Error()})
		return nil
	}
	metrics.TemplateCacheLookups.WithLabelValues("hit").Inc()
	return &t
}

func (h *Handler) setCached(ctx context.Context, t *models.PromptTemplate) {
	if h.redis == nil {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, h.config.KeyPrefix+t.ID, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("template cache write failed", map[string]interface{}{"templateId": t.ID, "error": err.Error()})
	}
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
