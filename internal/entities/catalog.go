package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is a catalog entry. Available is false exactly while one open loan references it.
type Book struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"index;size:512" json:"title"`
	Author    string    `gorm:"index;size:256" json:"author"`
	Available bool      `gorm:"index;not null" json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// CatalogCounts summarises the catalog for the librarian profile page.
type CatalogCounts struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Borrowed  int64 `json:"borrowed"`
}
