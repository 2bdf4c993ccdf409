// Package notify mirrors daily reports and operator alerts to the
// configured SES and SNS channels. Channel failures are reported in
// the per-channel results and never abort the Telegram delivery.
package notify

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	"mat-bot/internal/common/config"
	"mat-bot/internal/common/logger"
	"mat-bot/internal/common/validation"
)

const (
	StatusSent     = "Sent"
	StatusFailed   = "Failed"
	StatusDisabled = "Disabled"
)

const failureAlertTemplate = "⚠️ MAT Bot: el reporte diario del chat {{chat_id}} lleva {{failures}} fallos consecutivos. Último error: {{error}}"

// SESService matches the SES operations the notifier depends on.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSService matches the SNS operations the notifier depends on.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Result captures the outcome of one channel delivery.
type Result struct {
	NotificationID string `json:"notificationId"`
	Channel        string `json:"channel"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// Notifier fans one message out to the enabled channels.
type Notifier struct {
	cfg    config.NotificationConfig
	ses    SESService
	sns    SNSService
	logger logger.Logger
}

// New builds a notifier with real AWS clients for the enabled channels.
func New(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	n := &Notifier{cfg: cfg, logger: log}
	if !cfg.Email.Enabled && !cfg.SMS.Enabled {
		return n, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, err
	}
	if cfg.Email.Enabled {
		n.ses = ses.NewFromConfig(awsCfg)
	}
	if cfg.SMS.Enabled {
		n.sns = sns.NewFromConfig(awsCfg)
	}
	return n, nil
}

// NewWithServices builds a notifier on injected channel services.
func NewWithServices(cfg config.NotificationConfig, sesService SESService, snsService SNSService, log logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, ses: sesService, sns: snsService, logger: log}
}

// Enabled reports whether at least one channel can deliver.
func (n *Notifier) Enabled() bool {
	return n.ses != nil || n.sns != nil
}

// SendDailyCopy mirrors a delivered daily report to the ops channels.
func (n *Notifier) SendDailyCopy(ctx context.Context, subject, body string) []Result {
	return n.dispatch(ctx, subject, body)
}

// ReportFailure sends an operator alert about a failing subscription.
// It satisfies the scheduler's alerter contract.
func (n *Notifier) ReportFailure(ctx context.Context, chatID int64, consecutive int, err error) {
	message := renderTemplate(failureAlertTemplate, map[string]string{
		"chat_id":  strconv.FormatInt(chatID, 10),
		"failures": strconv.Itoa(consecutive),
		"error":    err.Error(),
	})
	n.dispatch(ctx, "MAT Bot: reporte diario fallando", message)
}

func (n *Notifier) dispatch(ctx context.Context, subject, body string) []Result {
	results := []Result{n.sendEmail(ctx, subject, body)}
	results = append(results, n.sendSMS(ctx, body)...)

	sent, failed := 0, 0
	for _, r := range results {
		switch r.Status {
		case StatusSent:
			sent++
		case StatusFailed:
			failed++
		}
	}
	n.logger.Info("notifications dispatched", map[string]interface{}{
		"sent":   sent,
		"failed": failed,
	})
	return results
}

func (n *Notifier) sendEmail(ctx context.Context, subject, body string) Result {
	result := newResult("email")
	if !n.cfg.Email.Enabled || n.ses == nil {
		result.Status = StatusDisabled
		return result
	}

	recipients := make([]string, 0, len(n.cfg.Email.Recipients))
	for _, recipient := range n.cfg.Email.Recipients {
		if !validation.ValidateEmail(recipient) {
			n.logger.Warn("skipping invalid email recipient", map[string]interface{}{
				"recipient": recipient,
			})
			continue
		}
		recipients = append(recipients, recipient)
	}
	if len(recipients) == 0 {
		result.Status = StatusFailed
		result.Error = "no valid recipients"
		return result
	}

	input := &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: recipients},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(strings.ReplaceAll(body, "\n", "<br>"))},
			},
		},
		Source: aws.String(n.cfg.Email.FromEmail),
	}

	if _, err := n.ses.SendEmail(ctx, input); err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		n.logger.WithError(err).Error("email notification failed", map[string]interface{}{
			"notificationID": result.NotificationID,
		})
		return result
	}

	result.Status = StatusSent
	n.logger.Debug("email notification sent", map[string]interface{}{
		"notificationID": result.NotificationID,
		"recipients":     len(recipients),
	})
	return result
}

func (n *Notifier) sendSMS(ctx context.Context, body string) []Result {
	if !n.cfg.SMS.Enabled || n.sns == nil {
		result := newResult("sms")
		result.Status = StatusDisabled
		return []Result{result}
	}

	results := make([]Result, 0, len(n.cfg.SMS.PhoneNumbers))
	for _, phone := range n.cfg.SMS.PhoneNumbers {
		result := newResult("sms")
		if !validation.ValidatePhone(phone) {
			result.Status = StatusFailed
			result.Error = "invalid phone number"
			results = append(results, result)
			continue
		}

		input := &sns.PublishInput{
			PhoneNumber: aws.String(phone),
			Message:     aws.String(body),
		}
		if _, err := n.sns.Publish(ctx, input); err != nil {
			result.Status = StatusFailed
			result.Error = err.Error()
			n.logger.WithError(err).Error("sms notification failed", map[string]interface{}{
				"notificationID": result.NotificationID,
			})
			results = append(results, result)
			continue
		}

		result.Status = StatusSent
		results = append(results, result)
	}
	return results
}

func newResult(channel string) Result {
	return Result{
		NotificationID: uuid.New().String(),
		Channel:        channel,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

var placeholderPattern = regexp.MustCompile(`\{\{[^}]*\}\}`)

// renderTemplate substitutes {{key}} placeholders and strips any the
// data did not cover.
func renderTemplate(template string, data map[string]string) string {
	out := template
	for key, value := range data {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return placeholderPattern.ReplaceAllString(out, "")
}
