package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./librarian.db"

	// DefaultLoanPeriodDays is how long a patron keeps a book before it is due
	DefaultLoanPeriodDays = 15
)
