package notifydraftready

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"docgen-workers/internal/common/camunda"
	apperrors "docgen-workers/internal/common/errors"
	"docgen-workers/internal/common/logger"
	"docgen-workers/internal/common/validation"
	"docgen-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-draft-ready"
)

var (
	ErrMissingJobID      = errors.New("job_id is required")
	ErrMissingDocumentID = errors.New("document_id is required")
)

type Handler struct {
	config     *Config
	sns        SNSPublisher
	ses        SESSender
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
	now        func() time.Time
}

// NewHandler builds the notifier. A nil publisher or sender disables that
// channel.
func NewHandler(config *Config, snsClient SNSPublisher, sesClient SESSender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		sns:        snsClient,
		ses:        sesClient,
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
	if input.JobID == "" {
		return nil, apperrors.NewInputParsingError(ErrMissingJobID)
	}
	if input.DocumentID == "" {
		return nil, apperrors.NewInputParsingError(ErrMissingDocumentID)
	}

	sentAt := h.now()
	event := &DraftReadyEvent{
		Event:          EventDraftReady,
		NotificationID: uuid.New().String(),
		JobID:          input.JobID,
		DocumentID:     input.DocumentID,
		ReviewURL:      ReviewURL(h.config.ReviewURLBase, input.DocumentID),
		OccurredAt:     sentAt,
	}

	channels := []string{}

	if h.sns != nil && h.config.TopicARN != "" {
		params, err := buildPublishInput(h.config.TopicARN, event)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		out, err := h.sns.Publish(ctx, params)
		if err != nil {
			return nil, apperrors.NewNotificationSendFailedError(ChannelSNS, err)
		}
		h.logger.Debug("draft event published", map[string]interface{}{
			"messageId": aws.ToString(out.MessageId),
			"topicArn":  h.config.TopicARN,
		})
		channels = append(channels, ChannelSNS)
	}

	if h.ses != nil && h.config.FromEmail != "" && input.ReviewerEmail != "" {
		if !validation.ValidateEmail(input.ReviewerEmail) {
			h.logger.Warn("skipping email, reviewer address is invalid", map[string]interface{}{
				"jobId": input.JobID,
			})
		} else {
			out, err := h.ses.SendEmail(ctx, buildEmailInput(h.config.FromEmail, input.ReviewerEmail, event))
			if err != nil {
				return nil, apperrors.NewNotificationSendFailedError(ChannelSES, err)
			}
			h.logger.Debug("reviewer email sent", map[string]interface{}{
				"messageId": aws.ToString(out.MessageId),
			})
			channels = append(channels, ChannelSES)
		}
	}

	h.logger.Info("draft notification sent", map[string]interface{}{
		"jobId":      input.JobID,
		"documentId": input.DocumentID,
		"channels":   channels,
	})

	return &Output{Notification: &models.DraftNotification{
		NotificationID: event.NotificationID,
		Channels:       channels,
		SentAt:         sentAt,
	}}, nil
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
