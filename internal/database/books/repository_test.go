package books

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/entities"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewSilentDatabase(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB)
}

func createBook(t *testing.T, repo *Repository, title, author string, available bool) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, Author: author, Available: available}
	require.NoError(t, repo.Create(context.Background(), book))
	return book
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	book := createBook(t, repo, "1984", "George Orwell", true)
	assert.NotEmpty(t, book.ID)

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "1984", got.Title)
	assert.True(t, got.Available)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_List(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	createBook(t, repo, "The Hobbit", "J.R.R. Tolkien", true)
	createBook(t, repo, "1984", "George Orwell", false)
	createBook(t, repo, "Fahrenheit 451", "Ray Bradbury", true)

	t.Run("all ordered by title", func(t *testing.T) {
		books, err := repo.List(ctx, All)
		require.NoError(t, err)
		require.Len(t, books, 3)
		assert.Equal(t, "1984", books[0].Title)
		assert.Equal(t, "Fahrenheit 451", books[1].Title)
		assert.Equal(t, "The Hobbit", books[2].Title)
	})

	t.Run("only available", func(t *testing.T) {
		books, err := repo.List(ctx, OnlyAvailable)
		require.NoError(t, err)
		require.Len(t, books, 2)
		for _, b := range books {
			assert.True(t, b.Available)
		}
	})
}

func TestRepository_GetByIDs(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	a := createBook(t, repo, "A", "X", true)
	b := createBook(t, repo, "B", "Y", true)

	found, err := repo.GetByIDs(ctx, []string{a.ID, b.ID, "gone"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "A", found[a.ID].Title)
	_, ok := found["gone"]
	assert.False(t, ok)

	found, err = repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRepository_UpdateDetails(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	book := createBook(t, repo, "1984", "Orwell", false)

	require.NoError(t, repo.UpdateDetails(ctx, book.ID, "Nineteen Eighty-Four", "George Orwell"))

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nineteen Eighty-Four", got.Title)
	assert.Equal(t, "George Orwell", got.Author)
	assert.False(t, got.Available, "availability must not change on edit")

	assert.ErrorIs(t, repo.UpdateDetails(ctx, "missing", "T", "A"), ErrBookNotFound)
}

func TestRepository_DeleteAndCounts(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	keep := createBook(t, repo, "Keep", "A", true)
	createBook(t, repo, "Out", "B", false)
	drop := createBook(t, repo, "Drop", "C", true)

	deleted, err := repo.Delete(ctx, drop.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, drop.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete is a no-op")

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.CatalogCounts{Total: 2, Available: 1, Borrowed: 1}, counts)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = repo.GetByID(ctx, keep.ID)
	assert.NoError(t, err)
}
