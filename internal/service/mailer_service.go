package service

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qrshelf/qrshelf-api/internal/models"
	"github.com/qrshelf/qrshelf-api/pkg/jobs"
)

const resendBaseURL = "https://api.resend.com"

type mailerSubscriberRepository interface {
	ListActiveEmails(ctx context.Context, collectionID string) ([]string, error)
}

type mailerCollectionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Collection, error)
}

// MailerOptions configures outbound email delivery.
type MailerOptions struct {
	APIKey    string
	FromEmail string
	BatchSize int
	Workers   int
}

type itemAddedPayload struct {
	CollectionID string
	ItemTitle    string
	ItemNote     string
}

// MailerService delivers subscriber notifications through Resend. Item
// notifications fan out through a worker queue so a slow provider never
// blocks the request that added the item.
type MailerService struct {
	client      *resty.Client
	queue       *jobs.Queue
	subscribers mailerSubscriberRepository
	collections mailerCollectionRepository
	logger      *zap.Logger

	from      string
	batchSize int
	enabled   bool
}

// NewMailerService constructs a MailerService instance. Without an API key
// the service still accepts work but drops it with a log line.
func NewMailerService(opts MailerOptions, subscribers mailerSubscriberRepository, collections mailerCollectionRepository, logger *zap.Logger) *MailerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 40
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}

	client := resty.New().
		SetBaseURL(resendBaseURL).
		SetAuthToken(opts.APIKey).
		SetHeader("Content-Type", "application/json")

	s := &MailerService{
		client:      client,
		subscribers: subscribers,
		collections: collections,
		logger:      logger,
		from:        opts.FromEmail,
		batchSize:   opts.BatchSize,
		enabled:     opts.APIKey != "",
	}
	s.queue = jobs.NewQueue("mailer", s.handleJob, jobs.QueueConfig{
		Workers: opts.Workers,
		Logger:  logger,
	})
	return s
}

// Start begins the delivery workers.
func (s *MailerService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *MailerService) Stop() {
	s.queue.Stop()
}

// NotifyItemAdded queues a notification to the collection's subscribers.
func (s *MailerService) NotifyItemAdded(collectionID string, item models.Item) {
	err := s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: "item_added",
		Payload: itemAddedPayload{
			CollectionID: collectionID,
			ItemTitle:    item.Title,
			ItemNote:     item.Note,
		},
	})
	if err != nil {
		s.logger.Warn("failed to queue item notification",
			zap.String("collection_id", collectionID),
			zap.Error(err))
	}
}

// SendShopInvite emails a team invite.
func (s *MailerService) SendShopInvite(ctx context.Context, email, shopName string) error {
	subject := fmt.Sprintf("You have been invited to join %s", shopName)
	html := fmt.Sprintf("<p>You have been invited to join <strong>%s</strong>. Sign in to accept the invite.</p>", shopName)
	return s.send(ctx, []string{email}, subject, html)
}

func (s *MailerService) handleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(itemAddedPayload)
	if !ok {
		s.logger.Error("unexpected mailer payload", zap.String("type", job.Type))
		return nil
	}

	collection, err := s.collections.FindByID(ctx, payload.CollectionID)
	if err != nil {
		return fmt.Errorf("load collection for notification: %w", err)
	}

	emails, err := s.subscribers.ListActiveEmails(ctx, payload.CollectionID)
	if err != nil {
		return fmt.Errorf("load subscribers: %w", err)
	}
	if len(emails) == 0 {
		return nil
	}

	subject := fmt.Sprintf("New in %s: %s", collection.Title, payload.ItemTitle)
	html := fmt.Sprintf("<p><strong>%s</strong> was just added to <strong>%s</strong>.</p>", payload.ItemTitle, collection.Title)
	if payload.ItemNote != "" {
		html += fmt.Sprintf("<p>%s</p>", payload.ItemNote)
	}

	for start := 0; start < len(emails); start += s.batchSize {
		end := start + s.batchSize
		if end > len(emails) {
			end = len(emails)
		}
		if err := s.send(ctx, emails[start:end], subject, html); err != nil {
			return err
		}
	}
	return nil
}

func (s *MailerService) send(ctx context.Context, to []string, subject, html string) error {
	if !s.enabled {
		s.logger.Debug("mailer disabled, dropping email", zap.Int("recipients", len(to)), zap.String("subject", subject))
		return nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"from":    s.from,
			"to":      to,
			"subject": subject,
			"html":    html,
		}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send email: resend returned %s", resp.Status())
	}
	return nil
}
