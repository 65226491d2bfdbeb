package notify

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/kavachhq/kavach-backend/internal/config"
)

// SNSSender sends SMS messages via AWS SNS.
type SNSSender struct {
	client   *sns.Client
	senderID string
}

// NewSNSSender builds the SMS channel, or returns ErrNotConfigured when no
// region is set so callers can fall back to a nil channel.
func NewSNSSender(ctx context.Context, cfg config.SNSConfig) (*SNSSender, error) {
	if cfg.Region == "" {
		return nil, ErrNotConfigured
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}

	return &SNSSender{
		client:   sns.NewFromConfig(awsCfg),
		senderID: cfg.SenderID,
	}, nil
}

func (s *SNSSender) SendSMS(ctx context.Context, to, message string) error {
	input := &sns.PublishInput{
		PhoneNumber: &to,
		Message:     &message,
	}
	if s.senderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    strPtr("String"),
				StringValue: &s.senderID,
			},
		}
	}

	_, err := s.client.Publish(ctx, input)
	return err
}

func strPtr(s string) *string { return &s }
