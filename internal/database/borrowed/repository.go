// Package borrowed provides database operations for loan records, including
// the transitions that move a book between available and borrowed.
package borrowed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

// ErrNotAvailable is returned by Borrow when the book is missing or already out.
var ErrNotAvailable = errors.New("book not available")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Borrow marks the book unavailable and opens a loan for username in one
// transaction. The availability flag is flipped with a conditional update, so
// when several callers race only the first one sees a matched row; the rest
// get ErrNotAvailable and create nothing.
func (r *Repository) Borrow(ctx context.Context, bookID, username string, borrowedOn, dueOn time.Time) (*entities.Loan, error) {
	var loan *entities.Loan

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Book{}).
			Where("id = ? AND available = ?", bookID, true).
			Update("available", false)
		if result.Error != nil {
			return fmt.Errorf("mark book borrowed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotAvailable
		}

		var book entities.Book
		if err := tx.Select("id", "title").Where("id = ?", bookID).First(&book).Error; err != nil {
			return fmt.Errorf("load borrowed book: %w", err)
		}

		loan = &entities.Loan{
			BookID:       book.ID,
			BookTitle:    book.Title,
			Username:     username,
			BorrowedDate: borrowedOn,
			ReturnDate:   dueOn,
			Returned:     false,
		}
		if err := tx.Create(loan).Error; err != nil {
			return fmt.Errorf("create loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Return closes an open loan and makes its book available again. It reports
// whether anything changed: a missing or already-returned loan is a no-op.
// If the book was deleted meanwhile only the loan is closed.
func (r *Repository) Return(ctx context.Context, loanID string, returnedAt time.Time) (*entities.Loan, bool, error) {
	var (
		loan    entities.Loan
		applied bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Loan{}).
			Where("id = ? AND returned = ?", loanID, false).
			Updates(map[string]any{
				"returned":    true,
				"returned_at": returnedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("close loan: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true

		if err := tx.Where("id = ?", loanID).First(&loan).Error; err != nil {
			return fmt.Errorf("load returned loan: %w", err)
		}

		// Zero rows here means the book was deleted; that is tolerated.
		if err := tx.Model(&entities.Book{}).
			Where("id = ?", loan.BookID).
			Update("available", true).Error; err != nil {
			return fmt.Errorf("mark book available: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !applied {
		return nil, false, nil
	}
	return &loan, true, nil
}

// ListOpenForUser returns the user's unreturned loans, newest first.
func (r *Repository) ListOpenForUser(ctx context.Context, username string) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.WithContext(ctx).
		Where("username = ? AND returned = ?", username, false).
		Order("borrowed_date DESC, created_at DESC").
		Find(&loans).Error
	return loans, err
}

// ListAll returns every loan, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.WithContext(ctx).Order("borrowed_date DESC, created_at DESC").Find(&loans).Error
	return loans, err
}
