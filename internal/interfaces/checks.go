package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/database/borrowed"
	"github.com/mrlokans/librarian/internal/http"
	"github.com/mrlokans/librarian/internal/loans"
	"github.com/mrlokans/librarian/internal/scheduler"
	"github.com/mrlokans/librarian/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ catalog.Store = (*books.Repository)(nil)
var _ loans.Store = (*borrowed.Repository)(nil)
var _ loans.TitleLookup = (*books.Repository)(nil)
var _ http.AccountLookup = (*auth.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ scheduler.AuditCleanupEnqueuer = (*tasks.Client)(nil)
