// Package books provides database operations for catalog entries.
package books

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

var ErrBookNotFound = errors.New("book not found")

// Filter selects which catalog entries List returns.
type Filter int

const (
	All Filter = iota
	OnlyAvailable
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a catalog entry.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID retrieves a catalog entry by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// GetByIDs returns the entries that still exist among ids, keyed by ID.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) (map[string]entities.Book, error) {
	found := make(map[string]entities.Book, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var books []entities.Book
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, err
	}
	for _, b := range books {
		found[b.ID] = b
	}
	return found, nil
}

// List returns catalog entries ordered by title.
func (r *Repository) List(ctx context.Context, filter Filter) ([]entities.Book, error) {
	var books []entities.Book
	query := r.db.WithContext(ctx).Order("title ASC, author ASC")
	if filter == OnlyAvailable {
		query = query.Where("available = ?", true)
	}
	err := query.Find(&books).Error
	return books, err
}

// UpdateDetails overwrites title and author. Availability is left untouched.
func (r *Repository) UpdateDetails(ctx context.Context, id, title, author string) error {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Updates(map[string]any{
		"title":  title,
		"author": author,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Delete removes a catalog entry. Loans referencing it are kept.
// Returns false when nothing was deleted.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Book{})
	return result.RowsAffected > 0, result.Error
}

// Count returns the number of catalog entries.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// Counts returns totals for the whole catalog.
func (r *Repository) Counts(ctx context.Context) (entities.CatalogCounts, error) {
	var counts entities.CatalogCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&entities.Book{}).Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&entities.Book{}).Where("available = ?", true).Count(&counts.Available).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&entities.Book{}).Where("available = ?", false).Count(&counts.Borrowed).Error; err != nil {
		return counts, err
	}
	return counts, nil
}
