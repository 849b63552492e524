// Package accounts provides database operations for librarian and patron accounts.
//
// # Usage
//
//	repo := accounts.NewRepository(db)
//	account, err := repo.GetByUsername(ctx, "john")
package accounts

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

var ErrAccountNotFound = errors.New("account not found")

// Repository handles all account database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new accounts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an account. The ID is assigned when empty.
func (r *Repository) Create(ctx context.Context, account *entities.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetByID retrieves an account by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Account, error) {
	var account entities.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByUsername retrieves an account by its unique username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	var account entities.Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Exists reports whether an account with the username exists.
func (r *Repository) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Account{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// Count returns the number of accounts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Account{}).Count(&count).Error
	return count, err
}
