package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

type seedAccount struct {
	Username string
	Password string
	Role     entities.Role
}

var defaultAccounts = []seedAccount{
	{Username: "admin", Password: "admin123", Role: entities.RoleAdmin},
	{Username: "john", Password: "john123", Role: entities.RoleUser},
	{Username: "emma", Password: "emma123", Role: entities.RoleUser},
	{Username: "michael", Password: "michael123", Role: entities.RoleUser},
	{Username: "sarah", Password: "sarah123", Role: entities.RoleUser},
	{Username: "david", Password: "david123", Role: entities.RoleUser},
	{Username: "lisa", Password: "lisa123", Role: entities.RoleUser},
	{Username: "james", Password: "james123", Role: entities.RoleUser},
	{Username: "anna", Password: "anna123", Role: entities.RoleUser},
	{Username: "peter", Password: "peter123", Role: entities.RoleUser},
	{Username: "mary", Password: "mary123", Role: entities.RoleUser},
}

var defaultBooks = []entities.Book{
	{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald"},
	{Title: "To Kill a Mockingbird", Author: "Harper Lee"},
	{Title: "1984", Author: "George Orwell"},
	{Title: "Pride and Prejudice", Author: "Jane Austen"},
	{Title: "The Catcher in the Rye", Author: "J.D. Salinger"},
	{Title: "Lord of the Flies", Author: "William Golding"},
	{Title: "The Hobbit", Author: "J.R.R. Tolkien"},
	{Title: "Fahrenheit 451", Author: "Ray Bradbury"},
	{Title: "The Alchemist", Author: "Paulo Coelho"},
	{Title: "The Little Prince", Author: "Antoine de Saint-Exupéry"},
}

// PasswordHasher turns a plaintext seed password into the stored hash.
type PasswordHasher func(password string) (string, error)

// SeedResult reports how many rows Seed inserted.
type SeedResult struct {
	Accounts int
	Books    int
}

// Seed inserts the sample accounts and books. Each table is only seeded
// when it is empty, so running it against a live database is safe.
func (d *Database) Seed(ctx context.Context, hash PasswordHasher) (SeedResult, error) {
	var result SeedResult

	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var accountCount int64
		if err := tx.Model(&entities.Account{}).Count(&accountCount).Error; err != nil {
			return fmt.Errorf("count accounts: %w", err)
		}
		if accountCount == 0 {
			for _, sa := range defaultAccounts {
				passwordHash, err := hash(sa.Password)
				if err != nil {
					return fmt.Errorf("hash password for %s: %w", sa.Username, err)
				}
				account := &entities.Account{
					Username:     sa.Username,
					PasswordHash: passwordHash,
					Role:         sa.Role,
				}
				if err := tx.Create(account).Error; err != nil {
					return fmt.Errorf("create account %s: %w", sa.Username, err)
				}
				result.Accounts++
			}
		}

		var bookCount int64
		if err := tx.Model(&entities.Book{}).Count(&bookCount).Error; err != nil {
			return fmt.Errorf("count books: %w", err)
		}
		if bookCount == 0 {
			for _, b := range defaultBooks {
				book := &entities.Book{Title: b.Title, Author: b.Author, Available: true}
				if err := tx.Create(book).Error; err != nil {
					return fmt.Errorf("create book %q: %w", b.Title, err)
				}
				result.Books++
			}
		}
		return nil
	})

	return result, err
}
