package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/loans"
)

// PatronController serves the borrowing pages for regular users, plus the
// shared available-books listing.
type PatronController struct {
	catalog  *catalog.Service
	loans    *loans.Manager
	accounts AccountLookup
	log      *zap.Logger
}

func NewPatronController(catalogService *catalog.Service, loanManager *loans.Manager, accounts AccountLookup, log *zap.Logger) *PatronController {
	return &PatronController{
		catalog:  catalogService,
		loans:    loanManager,
		accounts: accounts,
		log:      log.Named("patron"),
	}
}

func (p *PatronController) Dashboard(c *gin.Context) {
	books, err := p.catalog.ListAvailable(c.Request.Context())
	if err != nil {
		respondInternalError(c, p.log, err, "list available")
		return
	}
	render(c, http.StatusOK, "user_dashboard.html", gin.H{
		"Title": "Browse",
		"Books": books,
	})
}

// Borrow opens a loan for the caller. When the book is already out (or gone)
// the response is a plain-text notice rather than a redirect.
func (p *PatronController) Borrow(c *gin.Context) {
	_, err := p.loans.Borrow(c.Request.Context(), c.Param("id"), auth.GetUsername(c))
	if err != nil {
		if errors.Is(err, loans.ErrNotAvailable) {
			c.String(http.StatusOK, bookNotAvailable)
			return
		}
		respondInternalError(c, p.log, err, "borrow book")
		return
	}
	c.Redirect(http.StatusFound, "/view_borrowed_books")
}

func (p *PatronController) ViewBorrowed(c *gin.Context) {
	open, err := p.loans.ListOpenForUser(c.Request.Context(), auth.GetUsername(c))
	if err != nil {
		respondInternalError(c, p.log, err, "list borrowed")
		return
	}
	render(c, http.StatusOK, "view_borrowed.html", gin.H{
		"Title":    "My books",
		"Loans":    open,
		"LoanDays": int(p.loans.Period().Hours() / 24),
	})
}

func (p *PatronController) Profile(c *gin.Context) {
	account, ok := currentAccount(c, p.accounts, p.log)
	if !ok {
		return
	}
	render(c, http.StatusOK, "profile.html", gin.H{
		"Title":   "Profile",
		"Account": account,
	})
}

func (p *PatronController) AvailableBooks(c *gin.Context) {
	books, err := p.catalog.ListAvailable(c.Request.Context())
	if err != nil {
		respondInternalError(c, p.log, err, "list available")
		return
	}
	principal, _ := auth.GetPrincipal(c)
	render(c, http.StatusOK, "available_books.html", gin.H{
		"Title":   "Available books",
		"Books":   books,
		"IsAdmin": principal != nil && principal.IsAdmin(),
	})
}
