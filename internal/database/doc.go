// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into per-table sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	├── seed.go          # Sample accounts and books for an empty database
//	├── accounts/        # Librarian and patron accounts
//	├── books/           # Catalog entries and availability counts
//	├── borrowed/        # Loan records and the borrow/return transitions
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type over the shared *gorm.DB:
//
//	db, err := database.NewDatabase("./librarian.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	loansRepo := borrowed.NewRepository(db.DB)
//
//	available, err := booksRepo.List(ctx, books.OnlyAvailable)
//	loan, err := loansRepo.Borrow(ctx, bookID, "john", borrowedOn, dueOn)
//
// # Identifiers
//
// Accounts, books and loans use UUID string keys assigned in BeforeCreate
// hooks. Loans reference books and accounts by value only; nothing cascades
// and readers must tolerate dangling references.
//
// # Availability
//
// A book's Available flag only changes through borrowed.Repository.Borrow and
// borrowed.Repository.Return. Both run as a single transaction guarded by a
// conditional update, so two borrowers racing for the same book cannot both
// succeed.
package database
