package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.NewSilentDatabase(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.DB
}

func TestRepository_LogEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	event := &entities.AuditEvent{
		Username:    "admin",
		EventType:   entities.AuditEventCatalog,
		Action:      "book_create",
		Description: "Added book: 1984",
		EntityType:  "book",
		EntityID:    "b-1",
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(context.Background(), event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRepository(db)

	for i := 0; i < 15; i++ {
		event := &entities.AuditEvent{
			Username:  "john",
			EventType: entities.AuditEventLoan,
			Action:    "book_borrow",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		}
		require.NoError(t, repo.LogEvent(ctx, event))
	}
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		Username:  "emma",
		EventType: entities.AuditEventAuth,
		Action:    "login",
		Status:    entities.AuditStatusSuccess,
	}))

	t.Run("paginates newest first", func(t *testing.T) {
		events, total, err := repo.GetEvents(ctx, "john", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		require.Len(t, events, 10)
		assert.True(t, events[0].CreatedAt.After(events[9].CreatedAt))

		events, _, err = repo.GetEvents(ctx, "john", 10, 10)
		require.NoError(t, err)
		assert.Len(t, events, 5)
	})

	t.Run("empty username returns everyone", func(t *testing.T) {
		_, total, err := repo.GetEvents(ctx, "", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, int64(16), total)
	})
}

func TestRepository_GetEventsForEntity(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRepository(db)

	base := time.Now().Add(-time.Hour)
	for i, action := range []string{"book_borrow", "book_return"} {
		require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
			Username:   "john",
			EventType:  entities.AuditEventLoan,
			Action:     action,
			EntityType: "loan",
			EntityID:   "loan-1",
			Status:     entities.AuditStatusSuccess,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		EntityType: "loan",
		EntityID:   "loan-2",
		Action:     "book_borrow",
	}))

	events, err := repo.GetEventsForEntity(ctx, "loan", "loan-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "book_borrow", events[0].Action)
	assert.Equal(t, "book_return", events[1].Action)
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		Action:    "old",
		CreatedAt: time.Now().AddDate(0, 0, -60),
	}))
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		Action: "recent",
	}))

	deleted, err := repo.DeleteOldEvents(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := repo.GetEvents(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "recent", events[0].Action)
}
