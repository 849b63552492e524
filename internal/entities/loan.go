package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is how loan dates are rendered and compared.
const DateLayout = "2006-01-02"

// UnknownBookTitle is shown for loans whose catalog entry no longer exists.
const UnknownBookTitle = "Unknown"

// Loan records one borrow-to-return cycle. BookID and Username are weak
// references: they are looked up at read time and may dangle.
type Loan struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	BookID       string     `gorm:"index;size:36" json:"book_id"`
	BookTitle    string     `gorm:"size:512" json:"book_title"` // Snapshot taken at borrow time
	Username     string     `gorm:"index;size:100" json:"username"`
	BorrowedDate time.Time  `json:"borrowed_date"`
	ReturnDate   time.Time  `json:"return_date"` // BorrowedDate + loan period, never recomputed
	Returned     bool       `gorm:"index;not null" json:"returned"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (Loan) TableName() string {
	return "borrowed"
}

func (l *Loan) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// IsOpen reports whether the book has not been returned yet.
func (l Loan) IsOpen() bool {
	return !l.Returned
}

// LoanView is a loan joined with the current catalog title for display.
type LoanView struct {
	Loan
	CurrentTitle string `json:"current_title"`
}

// BorrowedOn returns the borrow date formatted for display.
func (l Loan) BorrowedOn() string {
	return l.BorrowedDate.Format(DateLayout)
}

// DueOn returns the return date formatted for display.
func (l Loan) DueOn() string {
	return l.ReturnDate.Format(DateLayout)
}
