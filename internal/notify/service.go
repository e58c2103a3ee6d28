// internal/notify/service.go
package notify

import (
	"context"
	"fmt"
	"time"

	"interview-backend/internal/common/config"
	"interview-backend/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Service sends interview confirmations. Delivery failures never fail the
// scheduling request; the outcome is reported back in the response payload.
type Service struct {
	config    config.NotificationConfig
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewService(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Service{
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"service": "notify"}),
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
	}, nil
}

// SendInterviewEmail delivers the confirmation email with the interview link.
// Returns whether the email was sent and, when it was not, a short reason.
func (s *Service) SendInterviewEmail(ctx context.Context, to, name, interviewURL string, scheduledAt time.Time) (bool, string) {
	if !s.config.Email.Enabled {
		s.logger.Warn("email delivery disabled, skipping confirmation", map[string]interface{}{
			"to": to,
		})
		return false, "email delivery is disabled"
	}

	subject := "Your Interview Is Scheduled"
	when := scheduledAt.UTC().Format("Monday, 2 January 2006 at 15:04 MST")

	textBody := fmt.Sprintf(
		"Hi %s,\n\nYour interview is scheduled for %s.\n\nJoin here: %s\n\nGood luck!",
		name, when, interviewURL,
	)
	htmlBody := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your interview is scheduled for <strong>%s</strong>.</p>`+
			`<p><a href="%s">Join your interview</a></p><p>Good luck!</p>`,
		name, when, interviewURL,
	)

	_, err := s.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(textBody)},
				Html: &types.Content{Data: aws.String(htmlBody)},
			},
		},
		Source: aws.String(s.config.Email.FromEmail),
	})
	if err != nil {
		s.logger.Error("email send failed", map[string]interface{}{
			"error": err,
			"to":    to,
		})
		return false, err.Error()
	}

	return true, ""
}

// SendInterviewSMS delivers a short confirmation text. Disabled by default;
// same non-fatal contract as email.
func (s *Service) SendInterviewSMS(ctx context.Context, phone, interviewURL string, scheduledAt time.Time) (bool, string) {
	if !s.config.SMS.Enabled {
		return false, "sms delivery is disabled"
	}
	if phone == "" {
		return false, "no phone number on booking"
	}

	message := fmt.Sprintf("Your interview is scheduled for %s. Join: %s",
		scheduledAt.UTC().Format("2 Jan 15:04 MST"), interviewURL)

	input := &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
	}
	if s.config.SMS.SenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.config.SMS.SenderID),
			},
		}
	}

	_, err := s.snsClient.Publish(ctx, input)
	if err != nil {
		s.logger.Error("SMS send failed", map[string]interface{}{
			"error": err,
			"phone": phone,
		})
		return false, err.Error()
	}

	return true, ""
}
