// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - catalog.Store: catalog entries (internal/catalog/catalog.go)
//   - loans.Store: loan records and the borrow/return transitions (internal/loans/loans.go)
//   - loans.TitleLookup: current titles for the librarian loan list (internal/loans/loans.go)
//   - http.AccountLookup: the signed-in account for profile pages (internal/http/admin.go)
//
// ## Background Work Interfaces
//
//   - tasks.AuditEventCleaner: audit retention sweep (internal/tasks/cleanup_audit.go)
//   - scheduler.AuditCleanupEnqueuer: queues the sweep on a cron schedule (internal/scheduler/audit_cleanup.go)
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., reservations):
//
//  1. Create sub-package: internal/database/reservations/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Declare the interface where it is consumed and implement its methods
//
//  4. Add compile-time check to checks.go:
//
//     var _ reservations.Store = (*reservationsRepo.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the current list.
package interfaces
