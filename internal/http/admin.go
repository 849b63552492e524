package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/loans"
)

// AccountLookup resolves the signed-in account for profile pages.
type AccountLookup interface {
	GetAccount(ctx context.Context, id string) (*entities.Account, error)
}

// AdminController serves the librarian pages: catalog maintenance and loan management.
type AdminController struct {
	catalog  *catalog.Service
	loans    *loans.Manager
	accounts AccountLookup
	log      *zap.Logger
}

func NewAdminController(catalogService *catalog.Service, loanManager *loans.Manager, accounts AccountLookup, log *zap.Logger) *AdminController {
	return &AdminController{
		catalog:  catalogService,
		loans:    loanManager,
		accounts: accounts,
		log:      log.Named("admin"),
	}
}

func (a *AdminController) Dashboard(c *gin.Context) {
	counts, err := a.catalog.Counts(c.Request.Context())
	if err != nil {
		respondInternalError(c, a.log, err, "dashboard counts")
		return
	}
	render(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"Title":  "Dashboard",
		"Counts": counts,
	})
}

func (a *AdminController) AddBookPage(c *gin.Context) {
	render(c, http.StatusOK, "add_book.html", gin.H{"Title": "Add book"})
}

func (a *AdminController) AddBook(c *gin.Context) {
	title := c.PostForm("title")
	author := c.PostForm("author")

	_, err := a.catalog.Create(actorContext(c), title, author)
	if err != nil {
		if isValidationError(err) {
			render(c, http.StatusBadRequest, "add_book.html", gin.H{
				"Title":      "Add book",
				"Error":      validationMessage(err),
				"FormTitle":  title,
				"FormAuthor": author,
			})
			return
		}
		respondInternalError(c, a.log, err, "add book")
		return
	}
	c.Redirect(http.StatusFound, "/view_books")
}

func (a *AdminController) ViewBooks(c *gin.Context) {
	books, err := a.catalog.ListAll(c.Request.Context())
	if err != nil {
		respondInternalError(c, a.log, err, "list books")
		return
	}
	render(c, http.StatusOK, "view_books.html", gin.H{
		"Title": "Catalog",
		"Books": books,
	})
}

func (a *AdminController) EditBookPage(c *gin.Context) {
	book, err := a.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			renderBookNotFound(c)
			return
		}
		respondInternalError(c, a.log, err, "load book")
		return
	}
	render(c, http.StatusOK, "edit_book.html", gin.H{
		"Title": "Edit book",
		"Book":  book,
	})
}

// EditBook replaces title and author. Availability is never touched here.
func (a *AdminController) EditBook(c *gin.Context) {
	id := c.Param("id")
	title := c.PostForm("title")
	author := c.PostForm("author")

	err := a.catalog.Update(actorContext(c), id, title, author)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/view_books")
	case errors.Is(err, catalog.ErrBookNotFound):
		renderBookNotFound(c)
	case isValidationError(err):
		render(c, http.StatusBadRequest, "edit_book.html", gin.H{
			"Title": "Edit book",
			"Error": validationMessage(err),
			"Book":  entities.Book{ID: id, Title: title, Author: author},
		})
	default:
		respondInternalError(c, a.log, err, "edit book")
	}
}

// DeleteBook removes the entry. Loans referencing it keep their snapshot
// and show up as "Unknown" on the loans page.
func (a *AdminController) DeleteBook(c *gin.Context) {
	if err := a.catalog.Delete(actorContext(c), c.Param("id")); err != nil {
		respondInternalError(c, a.log, err, "delete book")
		return
	}
	c.Redirect(http.StatusFound, "/view_books")
}

func (a *AdminController) ManageBorrowed(c *gin.Context) {
	views, err := a.loans.ListAllForAdmin(c.Request.Context())
	if err != nil {
		respondInternalError(c, a.log, err, "list loans")
		return
	}
	render(c, http.StatusOK, "manage_borrowed.html", gin.H{
		"Title": "Loans",
		"Loans": views,
	})
}

// ReturnBook closes the loan. Returning an already closed or unknown loan
// is a no-op and still redirects.
func (a *AdminController) ReturnBook(c *gin.Context) {
	if _, err := a.loans.Return(actorContext(c), c.Param("id")); err != nil {
		respondInternalError(c, a.log, err, "return book")
		return
	}
	c.Redirect(http.StatusFound, "/manage_borrowed_books")
}

func (a *AdminController) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	account, ok := currentAccount(c, a.accounts, a.log)
	if !ok {
		return
	}
	counts, err := a.catalog.Counts(ctx)
	if err != nil {
		respondInternalError(c, a.log, err, "profile counts")
		return
	}
	render(c, http.StatusOK, "admin_profile.html", gin.H{
		"Title":   "Profile",
		"Account": account,
		"Counts":  counts,
	})
}

func renderBookNotFound(c *gin.Context) {
	render(c, http.StatusNotFound, "not_found.html", gin.H{
		"Title":   bookNotFound,
		"Message": bookNotFound,
	})
}

// currentAccount loads the caller's stored account. It responds with 500
// and returns false when the lookup fails.
func currentAccount(c *gin.Context, accounts AccountLookup, log *zap.Logger) (*entities.Account, bool) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.Redirect(http.StatusFound, auth.LoginPath)
		c.Abort()
		return nil, false
	}
	account, err := accounts.GetAccount(c.Request.Context(), p.AccountID)
	if err != nil {
		respondInternalError(c, log, err, "load account")
		return nil, false
	}
	return account, true
}

func isValidationError(err error) bool {
	return errors.Is(err, catalog.ErrTitleRequired) || errors.Is(err, catalog.ErrAuthorRequired)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, catalog.ErrTitleRequired):
		return "Title is required."
	case errors.Is(err, catalog.ErrAuthorRequired):
		return "Author is required."
	}
	return err.Error()
}
