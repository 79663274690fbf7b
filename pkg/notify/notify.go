// Package notify broadcasts catalog-changed notifications.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// ProductsCreatedMessage is the text sent after every processed import batch.
const ProductsCreatedMessage = "Products created successfully"

// Message is the JSON body of a notification.
type Message struct {
	Message string `json:"message"`
}

// Notifier publishes one notification.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// SNSAPI is the subset of *sns.Client used by SNSNotifier.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes to a topic.
type SNSNotifier struct {
	client   SNSAPI
	topicARN string
}

// NewSNSNotifier creates a notifier for topicARN.
func NewSNSNotifier(client SNSAPI, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

func (n *SNSNotifier) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", n.topicARN, err)
	}
	return nil
}

// SESAPI is the subset of *sesv2.Client used by EmailNotifier.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailNotifier mails the notification body directly instead of going
// through a topic subscription.
type EmailNotifier struct {
	client SESAPI
	from   string
	to     string
}

// NewEmailNotifier creates a notifier sending from one address to another.
func NewEmailNotifier(client SESAPI, from, to string) *EmailNotifier {
	return &EmailNotifier{client: client, from: from, to: to}
}

func (n *EmailNotifier) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}
	_, err = n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.from),
		Destination:      &sestypes.Destination{ToAddresses: []string{n.to}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(msg.Message)},
				Body:    &sestypes.Body{Text: &sestypes.Content{Data: aws.String(string(body))}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sending notification email: %w", err)
	}
	return nil
}
