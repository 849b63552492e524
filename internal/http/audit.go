package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/audit"
)

const auditPageSize = 25

type AuditController struct {
	auditService *audit.Service
	log          *zap.Logger
}

func NewAuditController(auditService *audit.Service, log *zap.Logger) *AuditController {
	return &AuditController{
		auditService: auditService,
		log:          log.Named("audit"),
	}
}

// AuditLogPage renders the audit log for librarians, optionally filtered by username.
// GET /admin/audit
func (ac *AuditController) AuditLogPage(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	username := c.Query("username")
	offset := (page - 1) * auditPageSize

	events, total, err := ac.auditService.GetEvents(c.Request.Context(), username, auditPageSize, offset)
	if err != nil {
		respondInternalError(c, ac.log, err, "load audit events")
		return
	}

	totalPages := (int(total) + auditPageSize - 1) / auditPageSize
	if totalPages < 1 {
		totalPages = 1
	}

	render(c, http.StatusOK, "audit.html", gin.H{
		"Title":       "Audit log",
		"Events":      events,
		"Username":    username,
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"TotalEvents": total,
		"PrevPage":    page - 1,
		"NextPage":    page + 1,
		"HasNext":     page < totalPages,
	})
}

// BookHistory renders every recorded change and loan rejection for one book.
// GET /admin/audit/book/:id
func (ac *AuditController) BookHistory(c *gin.Context) {
	id := c.Param("id")
	events, err := ac.auditService.History(c.Request.Context(), "book", id)
	if err != nil {
		respondInternalError(c, ac.log, err, "load book history")
		return
	}
	render(c, http.StatusOK, "audit.html", gin.H{
		"Title":       "Book history",
		"Events":      events,
		"BookID":      id,
		"CurrentPage": 1,
		"TotalPages":  1,
		"TotalEvents": len(events),
	})
}
