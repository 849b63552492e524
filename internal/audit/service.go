// Package audit records who did what to the catalog, loans and sessions.
package audit

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/entities"
)

const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionBookCreate     = "book_create"
	ActionBookUpdate     = "book_update"
	ActionBookDelete     = "book_delete"
	ActionBorrow         = "book_borrow"
	ActionBorrowRejected = "book_borrow_rejected"
	ActionReturn         = "book_return"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	log  *zap.Logger
	wg   sync.WaitGroup
}

// NewService creates a new audit service. A nil logger discards write failures.
func NewService(repo *audit.Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// Log records a generic audit event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
// Failures are logged and never reach the caller.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Log(ctx, event); err != nil {
			s.log.Warn("failed to log audit event",
				zap.String("action", event.Action),
				zap.String("username", event.Username),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until pending asynchronous writes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogAuth records a login or logout attempt.
func (s *Service) LogAuth(username, action, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		Username:   username,
		EventType:  entities.AuditEventAuth,
		Action:     action,
		EntityType: "account",
		IPAddress:  ipAddr,
		UserAgent:  truncate(userAgent, 500),
		Status:     entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogCatalog records a change to a catalog entry.
func (s *Service) LogCatalog(username, action, bookID, description string, err error) {
	s.LogAsync(newEvent(username, entities.AuditEventCatalog, action, "book", bookID, description, err))
}

// LogLoan records a borrow or return. entityID is the loan, or the book when
// the borrow was rejected and no loan exists.
func (s *Service) LogLoan(username, action, entityType, entityID, description string, err error) {
	s.LogAsync(newEvent(username, entities.AuditEventLoan, action, entityType, entityID, description, err))
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, username string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, username, limit, offset)
}

// History returns every event recorded against one entity, oldest first.
func (s *Service) History(ctx context.Context, entityType, entityID string) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForEntity(ctx, entityType, entityID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func newEvent(username string, eventType entities.AuditEventType, action, entityType, entityID, description string, err error) *entities.AuditEvent {
	event := &entities.AuditEvent{
		Username:    username,
		EventType:   eventType,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
