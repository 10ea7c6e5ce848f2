package notifydraftready

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "docgen-workers/internal/common/errors"
	"docgen-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock AWS Clients
// ==========================

type MockSNS struct {
	mock.Mock
}

func (m *MockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{
		Timeout:       time.Second,
		TopicARN:      "arn:aws:sns:us-east-1:123456789012:draft-ready",
		FromEmail:     "drafts@example.com",
		ReviewURLBase: "https://app.example.com/drafts/",
	}
}

func createTestHandler(t *testing.T, snsClient SNSPublisher, sesClient SESSender) *Handler {
	h := NewHandler(createTestConfig(), snsClient, sesClient, logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	return h
}

func createValidInput() *Input {
	return &Input{
		JobID:         "J1",
		DocumentID:    "doc-1",
		ReviewerEmail: "reviewer@example.com",
	}
}

// ==========================
// Success Tests
// ==========================

func TestHandler_Execute_BothChannels(t *testing.T) {
	snsMock := new(MockSNS)
	sesMock := new(MockSES)

	var published DraftReadyEvent
	snsMock.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		if aws.ToString(in.TopicArn) != "arn:aws:sns:us-east-1:123456789012:draft-ready" {
			return false
		}
		return json.Unmarshal([]byte(aws.ToString(in.Message)), &published) == nil
	})).Return(&sns.PublishOutput{MessageId: aws.String("m-1")}, nil)

	sesMock.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "drafts@example.com" &&
			len(in.Destination.ToAddresses) == 1 &&
			in.Destination.ToAddresses[0] == "reviewer@example.com"
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("e-1")}, nil)

	out, err := createTestHandler(t, snsMock, sesMock).Execute(context.Background(), createValidInput())
	require.NoError(t, err)

	n := out.Notification
	_, parseErr := uuid.Parse(n.NotificationID)
	assert.NoError(t, parseErr)
	assert.Equal(t, []string{ChannelSNS, ChannelSES}, n.Channels)
	assert.Equal(t, fixedNow, n.SentAt)

	assert.Equal(t, EventDraftReady, published.Event)
	assert.Equal(t, n.NotificationID, published.NotificationID)
	assert.Equal(t, "J1", published.JobID)
	assert.Equal(t, "doc-1", published.DocumentID)
	assert.Equal(t, "https://app.example.com/drafts/doc-1", published.ReviewURL)

	snsMock.AssertExpectations(t)
	sesMock.AssertExpectations(t)
}

func TestHandler_Execute_NoReviewerEmailSkipsSES(t *testing.T) {
	snsMock := new(MockSNS)
	sesMock := new(MockSES)
	snsMock.On("Publish", mock.Anything, mock.Anything).Return(&sns.PublishOutput{MessageId: aws.String("m-1")}, nil)

	input := createValidInput()
	input.ReviewerEmail = ""

	out, err := createTestHandler(t, snsMock, sesMock).Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, []string{ChannelSNS}, out.Notification.Channels)
	sesMock.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestHandler_Execute_InvalidReviewerEmailSkipsSES(t *testing.T) {
	sesMock := new(MockSES)

	input := createValidInput()
	input.ReviewerEmail = "not-an-email"

	out, err := createTestHandler(t, nil, sesMock).Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, out.Notification.Channels)
	sesMock.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestHandler_Execute_NoChannelsConfigured(t *testing.T) {
	out, err := createTestHandler(t, nil, nil).Execute(context.Background(), createValidInput())
	require.NoError(t, err)
	assert.NotNil(t, out.Notification.Channels)
	assert.Empty(t, out.Notification.Channels)
	assert.NotEmpty(t, out.Notification.NotificationID)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		snsErr    error
		sesErr    error
		wantCode  apperrors.ErrorCode
		retryable bool
		wantInErr string
	}{
		{
			name:     "missing job id",
			input:    &Input{DocumentID: "doc-1"},
			wantCode: apperrors.ErrCodeInputParsingFailed,
		},
		{
			name:     "missing document id",
			input:    &Input{JobID: "J1"},
			wantCode: apperrors.ErrCodeInputParsingFailed,
		},
		{
			name:      "sns failure",
			input:     createValidInput(),
			snsErr:    errors.New("throttled"),
			wantCode:  apperrors.ErrCodeNotificationSendFailed,
			retryable: true,
			wantInErr: "channel: sns",
		},
		{
			name:      "ses failure",
			input:     createValidInput(),
			sesErr:    errors.New("address not verified"),
			wantCode:  apperrors.ErrCodeNotificationSendFailed,
			retryable: true,
			wantInErr: "channel: ses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snsMock := new(MockSNS)
			sesMock := new(MockSES)
			if tt.snsErr != nil {
				snsMock.On("Publish", mock.Anything, mock.Anything).Return(nil, tt.snsErr)
			} else {
				snsMock.On("Publish", mock.Anything, mock.Anything).Return(&sns.PublishOutput{MessageId: aws.String("m")}, nil)
			}
			if tt.sesErr != nil {
				sesMock.On("SendEmail", mock.Anything, mock.Anything).Return(nil, tt.sesErr)
			} else {
				sesMock.On("SendEmail", mock.Anything, mock.Anything).Return(&ses.SendEmailOutput{MessageId: aws.String("e")}, nil)
			}

			_, err := createTestHandler(t, snsMock, sesMock).Execute(context.Background(), tt.input)
			require.Error(t, err)

			stdErr := apperrors.Normalize(err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
			if tt.wantInErr != "" {
				assert.Contains(t, stdErr.Details, tt.wantInErr)
			}
		})
	}
}

// ==========================
// Message Building
// ==========================

func TestReviewURL(t *testing.T) {
	assert.Equal(t, "", ReviewURL("", "doc-1"))
	assert.Equal(t, "https://app.example.com/drafts/doc-1", ReviewURL("https://app.example.com/drafts", "doc-1"))
	assert.Equal(t, "https://app.example.com/drafts/doc-1", ReviewURL("https://app.example.com/drafts/", "doc-1"))
}

func TestBuildEmailInput(t *testing.T) {
	in := buildEmailInput("from@example.com", "to@example.com", &DraftReadyEvent{
		JobID:      "J1",
		DocumentID: "doc-1",
		ReviewURL:  "https://app.example.com/drafts/doc-1",
	})

	assert.Equal(t, "Draft ready for review: job J1", aws.ToString(in.Message.Subject.Data))
	body := aws.ToString(in.Message.Body.Text.Data)
	assert.Contains(t, body, "job J1")
	assert.Contains(t, body, "Document: doc-1")
	assert.Contains(t, body, "https://app.example.com/drafts/doc-1")
}

func TestBuildPublishInput(t *testing.T) {
	in, err := buildPublishInput("arn:topic", &DraftReadyEvent{Event: EventDraftReady, JobID: "J1"})
	require.NoError(t, err)
	assert.Equal(t, "arn:topic", aws.ToString(in.TopicArn))
	assert.Equal(t, EventDraftReady, aws.ToString(in.MessageAttributes["event"].StringValue))
	assert.Equal(t, "J1", aws.ToString(in.MessageAttributes["job_id"].StringValue))
}
