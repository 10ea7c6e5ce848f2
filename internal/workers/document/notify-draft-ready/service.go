package notifydraftready

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSPublisher is satisfied by *sns.Client.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SESSender is satisfied by *ses.Client.
type SESSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// ReviewURL joins the configured base with the document id. Empty base
// yields an empty URL.
func ReviewURL(base, documentID string) string {
	if base == "" {
		return ""
	}
	u, err := url.JoinPath(base, documentID)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + documentID
	}
	return u
}

func buildPublishInput(topicARN string, event *DraftReadyEvent) (*sns.PublishInput, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Subject:  aws.String("Draft ready for review"),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"event": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Event),
			},
			"job_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.JobID),
			},
		},
	}, nil
}

func buildEmailInput(from, to string, event *DraftReadyEvent) *ses.SendEmailInput {
	var body strings.Builder
	fmt.Fprintf(&body, "A draft document for job %s is ready for review.\n\n", event.JobID)
	fmt.Fprintf(&body, "Document: %s\n", event.DocumentID)
	if event.ReviewURL != "" {
		fmt.Fprintf(&body, "Review it here: %s\n", event.ReviewURL)
	}

	return &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Data:    aws.String(fmt.Sprintf("Draft ready for review: job %s", event.JobID)),
				Charset: aws.String("UTF-8"),
			},
			Body: &sestypes.Body{
				Text: &sestypes.Content{
					Data:    aws.String(body.String()),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}
}
