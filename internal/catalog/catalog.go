// Package catalog manages the librarian's book catalog. Availability is not
// editable here; only the loans package moves a book in and out of stock.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/entities"
)

var (
	ErrBookNotFound   = books.ErrBookNotFound
	ErrTitleRequired  = errors.New("title is required")
	ErrAuthorRequired = errors.New("author is required")
)

// Store is the persistence the catalog needs.
type Store interface {
	Create(ctx context.Context, book *entities.Book) error
	GetByID(ctx context.Context, id string) (*entities.Book, error)
	List(ctx context.Context, filter books.Filter) ([]entities.Book, error)
	UpdateDetails(ctx context.Context, id, title, author string) error
	Delete(ctx context.Context, id string) (bool, error)
	Counts(ctx context.Context) (entities.CatalogCounts, error)
}

// Service is the catalog manager.
type Service struct {
	store Store
	audit *audit.Service
}

// NewService creates a catalog manager. auditService may be nil.
func NewService(store Store, auditService *audit.Service) *Service {
	return &Service{store: store, audit: auditService}
}

// ListAll returns every entry ordered by title.
func (s *Service) ListAll(ctx context.Context) ([]entities.Book, error) {
	return s.store.List(ctx, books.All)
}

// ListAvailable returns the entries that can be borrowed right now.
func (s *Service) ListAvailable(ctx context.Context) ([]entities.Book, error) {
	return s.store.List(ctx, books.OnlyAvailable)
}

// Get returns one entry or ErrBookNotFound.
func (s *Service) Get(ctx context.Context, id string) (*entities.Book, error) {
	return s.store.GetByID(ctx, id)
}

// Create adds an available entry.
func (s *Service) Create(ctx context.Context, title, author string) (*entities.Book, error) {
	title, author, err := normalize(title, author)
	if err != nil {
		return nil, err
	}

	book := &entities.Book{Title: title, Author: author, Available: true}
	if err := s.store.Create(ctx, book); err != nil {
		s.logChange(ctx, audit.ActionBookCreate, "", "Failed to add book: "+title, err)
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logChange(ctx, audit.ActionBookCreate, book.ID, "Added book: "+title, nil)
	return book, nil
}

// Update overwrites title and author of an existing entry.
func (s *Service) Update(ctx context.Context, id, title, author string) error {
	title, author, err := normalize(title, author)
	if err != nil {
		return err
	}

	if err := s.store.UpdateDetails(ctx, id, title, author); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return err
		}
		return fmt.Errorf("update book %s: %w", id, err)
	}

	s.logChange(ctx, audit.ActionBookUpdate, id, fmt.Sprintf("Updated book: %s by %s", title, author), nil)
	return nil
}

// Delete removes an entry without looking at its loans. Open loans keep
// pointing at the removed ID. Deleting a missing entry is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	if deleted {
		s.logChange(ctx, audit.ActionBookDelete, id, "Deleted book "+id, nil)
	}
	return nil
}

// Counts returns total, available and borrowed entry counts.
func (s *Service) Counts(ctx context.Context) (entities.CatalogCounts, error) {
	return s.store.Counts(ctx)
}

func (s *Service) logChange(ctx context.Context, action, bookID, description string, err error) {
	if s.audit == nil {
		return
	}
	s.audit.LogCatalog(audit.Actor(ctx), action, bookID, description, err)
}

func normalize(title, author string) (string, string, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" {
		return "", "", ErrTitleRequired
	}
	if author == "" {
		return "", "", ErrAuthorRequired
	}
	return title, author, nil
}
