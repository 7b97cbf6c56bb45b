//go:generate go run go.uber.org/mock/mockgen -source=webhook_service.go -destination=../mocks/mock_webhook_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"wa-bridge/contract"
	"wa-bridge/domain"
	"wa-bridge/errors"
	"wa-bridge/observability"
)

// IWebhookService is everything the control surface can ask for.
type IWebhookService interface {
	Register(url string, filter domain.Filter) error
	Unregister(url string) error
	List() []domain.Subscriber
	Send(ctx context.Context, to, message string) error
	Journal(limit *int) ([]domain.JournalEntry, error)
	Stats() observability.Snapshot
}

type WebhookService struct {
	log      *slog.Logger
	registry contract.IRegistry
	sender   contract.Sender
	journal  contract.IJournal
	stats    *observability.Stats
}

func NewWebhookService(log *slog.Logger, registry contract.IRegistry, sender contract.Sender,
	journal contract.IJournal, stats *observability.Stats) *WebhookService {
	return &WebhookService{
		log:      log,
		registry: registry,
		sender:   sender,
		journal:  journal,
		stats:    stats,
	}
}

func (s *WebhookService) Register(url string, filter domain.Filter) error {
	err := s.registry.Register(url, filter)
	s.store(domain.JournalEntry{Kind: domain.JournalRegister, URL: url, Target: describe(filter)}, err)
	return err
}

func (s *WebhookService) Unregister(url string) error {
	err := s.registry.Unregister(url)
	s.store(domain.JournalEntry{Kind: domain.JournalUnregister, URL: url}, err)
	return err
}

func (s *WebhookService) List() []domain.Subscriber {
	return s.registry.Snapshot()
}

// Send rejects empty fields before touching the session.
func (s *WebhookService) Send(ctx context.Context, to, message string) error {
	if strings.TrimSpace(to) == "" || strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: to and message are required", errors.ErrInvalidInput)
	}
	err := s.sender.Send(ctx, to, message)
	if err != nil {
		s.log.Error("Outbound message failed", "to", to, "error", err)
	}
	s.store(domain.JournalEntry{Kind: domain.JournalSend, Target: to}, err)
	return err
}

func (s *WebhookService) Journal(limit *int) ([]domain.JournalEntry, error) {
	if limit != nil && *limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", errors.ErrInvalidInput)
	}
	return s.journal.GetEntries(limit)
}

func (s *WebhookService) Stats() observability.Snapshot {
	return s.stats.Snapshot(s.registry.Len())
}

// store never fails the caller, the journal is best effort.
func (s *WebhookService) store(entry domain.JournalEntry, err error) {
	entry.Status = domain.StatusOK
	if err != nil {
		entry.Status = domain.StatusFailed
		entry.Error = err.Error()
	}
	if jErr := s.journal.StoreEntry(entry); jErr != nil {
		s.log.Warn("Journal write failed", "kind", entry.Kind, "error", jErr)
	}
}

func describe(filter domain.Filter) string {
	var parts []string
	if filter.ChatID != nil && *filter.ChatID != "" {
		parts = append(parts, "chatId="+*filter.ChatID)
	}
	if filter.GroupName != nil && *filter.GroupName != "" {
		parts = append(parts, "groupName="+*filter.GroupName)
	}
	return strings.Join(parts, ",")
}
