package savedraftdocument

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"docgen-workers/internal/common/camunda"
	apperrors "docgen-workers/internal/common/errors"
	"docgen-workers/internal/common/logger"
	"docgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "save-draft-document"
)

const insertDraftQuery = `INSERT INTO draft_documents
	(id, job_id, markdown, html_preview, line_items_json, tokens_used, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

var (
	ErrMissingDraft = errors.New("draft_document is required")
	ErrMissingJobID = errors.New("job_id is required")
)

// Indexer writes a document to the search index. *database.ElasticsearchClient
// satisfies it.
type Indexer interface {
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
}

type Handler struct {
	config     *Config
	db         *sql.DB
	indexer    Indexer
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
	now        func() time.Time
}

// NewHandler builds the saver. indexer may be nil when search is not configured.
func NewHandler(config *Config, db *sql.DB, indexer Indexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		indexer:    indexer,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
		now:        func() time.Time { return time.Now().UTC() },
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
	draft := input.DraftDocument
	if draft == nil {
		return nil, apperrors.NewInputParsingError(ErrMissingDraft)
	}

	jobID := input.JobID
	if jobID == "" {
		jobID = draft.JobID
	}
	if jobID == "" {
		return nil, apperrors.NewInputParsingError(ErrMissingJobID)
	}

	status := draft.Status
	if status == "" {
		status = models.DraftStatus
	}

	preview, err := RenderPreview(draft.Markdown)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	lineItems := draft.LineItemsJSON
	if lineItems == nil {
		lineItems = []interface{}{}
	}
	lineItemsJSON, err := json.Marshal(lineItems)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("marshal line items: %w", err))
	}

	docID := uuid.New().String()
	createdAt := h.now()

	if _, err := h.db.ExecContext(ctx, insertDraftQuery,
		docID, jobID, draft.Markdown, preview, string(lineItemsJSON), draft.TokensUsed, status, createdAt,
	); err != nil {
		return nil, apperrors.NewDraftSaveFailedError(err)
	}

	stored := &models.StoredDraft{
		DocumentID: docID,
		JobID:      jobID,
		Status:     status,
		SavedAt:    createdAt,
	}
	stored.Indexed = h.index(ctx, &indexedDraft{
		DocumentID: docID,
		JobID:      jobID,
		Markdown:   draft.Markdown,
		TokensUsed: draft.TokensUsed,
		Status:     status,
		CreatedAt:  createdAt,
	})

	h.logger.Info("draft saved", map[string]interface{}{
		"documentId": docID,
		"jobId":      jobID,
		"tokensUsed": draft.TokensUsed,
		"indexed":    stored.Indexed,
	})
	return &Output{StoredDraft: stored}, nil
}

// index reports whether the draft reached the search index. Failures do not
// fail the job; the row in Postgres is authoritative.
func (h *Handler) index(ctx context.Context, doc *indexedDraft) bool {
	if h.indexer == nil {
		return false
	}
	if err := h.indexer.IndexDocument(ctx, h.config.IndexName, doc.DocumentID, doc); err != nil {
		h.logger.Warn("draft indexing failed", map[string]interface{}{
			"documentId": doc.DocumentID,
			"index":      h.config.IndexName,
			"error":      err.Error(),
		})
		return false
	}
	return true
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
