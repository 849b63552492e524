// Package loans implements the borrow/return state machine of a catalog
// entry: Available -> Borrowed -> Available.
package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/database/borrowed"
	"github.com/mrlokans/librarian/internal/entities"
)

// ErrNotAvailable means the book is already out or does not exist.
var ErrNotAvailable = borrowed.ErrNotAvailable

// Store persists loans and performs the guarded availability transitions.
type Store interface {
	Borrow(ctx context.Context, bookID, username string, borrowedOn, dueOn time.Time) (*entities.Loan, error)
	Return(ctx context.Context, loanID string, returnedAt time.Time) (*entities.Loan, bool, error)
	ListOpenForUser(ctx context.Context, username string) ([]entities.Loan, error)
	ListAll(ctx context.Context) ([]entities.Loan, error)
}

// TitleLookup resolves book IDs to current catalog entries. Missing IDs are
// simply absent from the result.
type TitleLookup interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]entities.Book, error)
}

// Manager is the loan manager.
type Manager struct {
	store  Store
	titles TitleLookup
	audit  *audit.Service
	period time.Duration
	now    func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a loan manager. auditService may be nil.
func NewManager(store Store, titles TitleLookup, auditService *audit.Service, period time.Duration, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		titles: titles,
		audit:  auditService,
		period: period,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Period is the loan length added to the borrow date.
func (m *Manager) Period() time.Duration {
	return m.period
}

// Borrow lends the book to username. Exactly one of any number of concurrent
// callers for the same available book succeeds; the others, and every call
// for a borrowed or missing book, get ErrNotAvailable and change nothing.
func (m *Manager) Borrow(ctx context.Context, bookID, username string) (*entities.Loan, error) {
	today := m.today()
	loan, err := m.store.Borrow(ctx, bookID, username, today, today.Add(m.period))
	if err != nil {
		if errors.Is(err, ErrNotAvailable) {
			m.logLoan(username, audit.ActionBorrowRejected, "book", bookID, "Borrow rejected for book "+bookID, err)
			return nil, err
		}
		return nil, fmt.Errorf("borrow book %s: %w", bookID, err)
	}

	m.logLoan(username, audit.ActionBorrow, "loan", loan.ID,
		fmt.Sprintf("Borrowed %q until %s", loan.BookTitle, loan.DueOn()), nil)
	return loan, nil
}

// Return closes the loan and restocks its book. It reports false when the
// loan is missing or was already returned, in which case nothing changed.
func (m *Manager) Return(ctx context.Context, loanID string) (bool, error) {
	loan, applied, err := m.store.Return(ctx, loanID, m.now().UTC())
	if err != nil {
		return false, fmt.Errorf("return loan %s: %w", loanID, err)
	}
	if !applied {
		return false, nil
	}

	m.logLoan(audit.Actor(ctx), audit.ActionReturn, "loan", loan.ID,
		fmt.Sprintf("Returned %q borrowed by %s", loan.BookTitle, loan.Username), nil)
	return true, nil
}

// ListOpenForUser returns the user's unreturned loans, newest first.
func (m *Manager) ListOpenForUser(ctx context.Context, username string) ([]entities.Loan, error) {
	return m.store.ListOpenForUser(ctx, username)
}

// ListAllForAdmin returns every loan with the book's current title, or
// entities.UnknownBookTitle when the book has been deleted.
func (m *Manager) ListAllForAdmin(ctx context.Context) ([]entities.LoanView, error) {
	loans, err := m.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	ids := make([]string, 0, len(loans))
	seen := make(map[string]bool, len(loans))
	for _, l := range loans {
		if !seen[l.BookID] {
			seen[l.BookID] = true
			ids = append(ids, l.BookID)
		}
	}

	current, err := m.titles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve book titles: %w", err)
	}

	views := make([]entities.LoanView, 0, len(loans))
	for _, l := range loans {
		title := entities.UnknownBookTitle
		if b, ok := current[l.BookID]; ok {
			title = b.Title
		}
		views = append(views, entities.LoanView{Loan: l, CurrentTitle: title})
	}
	return views, nil
}

// today is the current UTC calendar date at midnight.
func (m *Manager) today() time.Time {
	return m.now().UTC().Truncate(24 * time.Hour)
}

func (m *Manager) logLoan(username, action, entityType, entityID, description string, err error) {
	if m.audit == nil {
		return
	}
	m.audit.LogLoan(username, action, entityType, entityID, description, err)
}
