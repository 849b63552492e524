package loans

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/database"
	auditRepo "github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/database/borrowed"
	"github.com/mrlokans/librarian/internal/entities"
)

var fixedNow = time.Date(2026, 5, 10, 14, 30, 0, 0, time.UTC)

type testEnv struct {
	manager *Manager
	catalog *catalog.Service
	audit   *audit.Service
	db      *gorm.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewSilentDatabase(filepath.Join(t.TempDir(), "loans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	auditSvc := audit.NewService(auditRepo.NewRepository(db.DB), zap.NewNop())
	bookRepo := books.NewRepository(db.DB)

	return &testEnv{
		manager: NewManager(borrowed.NewRepository(db.DB), bookRepo, auditSvc, 15*24*time.Hour,
			WithClock(func() time.Time { return fixedNow })),
		catalog: catalog.NewService(bookRepo, auditSvc),
		audit:   auditSvc,
		db:      db.DB,
	}
}

func (e *testEnv) addBook(t *testing.T, title, author string) *entities.Book {
	t.Helper()
	book, err := e.catalog.Create(context.Background(), title, author)
	require.NoError(t, err)
	return book
}

func TestManager_Borrow(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	book := env.addBook(t, "1984", "George Orwell")

	loan, err := env.manager.Borrow(ctx, book.ID, "john")
	require.NoError(t, err)
	assert.Equal(t, "2026-05-10", loan.BorrowedOn())
	assert.Equal(t, "2026-05-25", loan.DueOn())
	assert.Equal(t, 15*24*time.Hour, loan.ReturnDate.Sub(loan.BorrowedDate))
	assert.False(t, loan.Returned)

	got, err := env.catalog.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)

	open, err := env.manager.ListOpenForUser(ctx, "john")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "1984", open[0].BookTitle)
	assert.Equal(t, "2026-05-25", open[0].DueOn())
}

func TestManager_BorrowUnavailable(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	book := env.addBook(t, "Dune", "Frank Herbert")

	_, err := env.manager.Borrow(ctx, book.ID, "john")
	require.NoError(t, err)

	_, err = env.manager.Borrow(ctx, book.ID, "emma")
	assert.ErrorIs(t, err, ErrNotAvailable)

	_, err = env.manager.Borrow(ctx, "no-such-book", "emma")
	assert.ErrorIs(t, err, ErrNotAvailable)

	all, err := env.manager.ListAllForAdmin(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	open, err := env.manager.ListOpenForUser(ctx, "emma")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestManager_ConcurrentBorrow(t *testing.T) {
	env := setupTestEnv(t)
	book := env.addBook(t, "Contended", "Author")

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, user := range []string{"john", "emma"} {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			_, errs[i] = env.manager.Borrow(context.Background(), book.ID, user)
		}(i, user)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrNotAvailable):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
}

func TestManager_Return(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	book := env.addBook(t, "Dune", "Frank Herbert")

	loan, err := env.manager.Borrow(ctx, book.ID, "john")
	require.NoError(t, err)

	applied, err := env.manager.Return(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := env.catalog.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, got.Available)

	applied, err = env.manager.Return(ctx, loan.ID)
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = env.manager.Return(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestManager_ListAllForAdminUnknownTitle(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	kept := env.addBook(t, "Kept", "Author")
	gone := env.addBook(t, "Gone", "Author")

	_, err := env.manager.Borrow(ctx, kept.ID, "john")
	require.NoError(t, err)
	goneLoan, err := env.manager.Borrow(ctx, gone.ID, "emma")
	require.NoError(t, err)

	require.NoError(t, env.catalog.Update(ctx, kept.ID, "Kept (2nd ed.)", "Author"))
	require.NoError(t, env.catalog.Delete(ctx, gone.ID))

	views, err := env.manager.ListAllForAdmin(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	titles := map[string]string{}
	for _, v := range views {
		titles[v.Username] = v.CurrentTitle
	}
	assert.Equal(t, "Kept (2nd ed.)", titles["john"])
	assert.Equal(t, entities.UnknownBookTitle, titles["emma"])

	// Returning a loan whose book was deleted still closes it.
	applied, err := env.manager.Return(ctx, goneLoan.ID)
	require.NoError(t, err)
	assert.True(t, applied)
}

// Admin fixes the author of "1984", john borrows it, the admin takes it back.
func TestManager_EndToEnd(t *testing.T) {
	env := setupTestEnv(t)
	adminCtx := audit.WithActor(context.Background(), "admin")
	ctx := context.Background()

	book := env.addBook(t, "1984", "Orwell")
	require.NoError(t, env.catalog.Update(adminCtx, book.ID, "1984", "George Orwell"))

	loan, err := env.manager.Borrow(ctx, book.ID, "john")
	require.NoError(t, err)

	available, err := env.catalog.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)

	counts, err := env.catalog.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.CatalogCounts{Total: 1, Available: 0, Borrowed: 1}, counts)

	views, err := env.manager.ListAllForAdmin(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "1984", views[0].CurrentTitle)
	assert.Equal(t, "john", views[0].Username)
	assert.False(t, views[0].Returned)

	applied, err := env.manager.Return(adminCtx, loan.ID)
	require.NoError(t, err)
	require.True(t, applied)

	got, err := env.catalog.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.Equal(t, "George Orwell", got.Author)

	open, err := env.manager.ListOpenForUser(ctx, "john")
	require.NoError(t, err)
	assert.Empty(t, open)

	env.audit.Wait()
	history, err := env.audit.History(ctx, "loan", loan.ID)
	require.NoError(t, err)
	actions := []string{}
	for _, e := range history {
		actions = append(actions, e.Action)
	}
	assert.ElementsMatch(t, []string{audit.ActionBorrow, audit.ActionReturn}, actions)
}

func TestManager_Today(t *testing.T) {
	m := NewManager(nil, nil, nil, time.Hour, WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 23, 59, 0, 0, time.FixedZone("X", -3*3600))
	}))
	assert.Equal(t, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), m.today())
	assert.Equal(t, time.Hour, m.Period())
}
