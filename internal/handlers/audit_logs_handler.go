package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type AuditReader interface {
	List(ctx context.Context, q audit.Query) ([]models.AuditLog, int64, error)
}

type AuditLogsHandler struct {
	reader AuditReader
}

func NewAuditLogsHandler(reader AuditReader) *AuditLogsHandler {
	return &AuditLogsHandler{reader: reader}
}

// List pages through the salon's schedule audit trail, newest first.
func (h *AuditLogsHandler) List(c *gin.Context) {
	ac, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	salonID, ok := uuidParam(c, "salonId")
	if !ok {
		return
	}
	if !ac.ManagesSalon(salonID) {
		httperr.Forbidden(c, "forbidden", "only owners and managers can read the audit trail")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := audit.Query{
		SalonID: salonID,
		Action:  c.Query("action"),
		Entity:  c.DefaultQuery("entity", audit.EntityStaffSchedule),
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}

	// --------------------------------------------------
	// Optional filters
	// --------------------------------------------------
	if v := c.Query("entity_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httperr.Respond(c, httperr.NewValidationError("entity_id", "must be a UUID"))
			return
		}
		q.EntityID = &id
	}

	if v := c.Query("from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			httperr.Respond(c, httperr.NewValidationError("from", "use YYYY-MM-DD"))
			return
		}
		q.From = &from
	}

	if v := c.Query("to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			httperr.Respond(c, httperr.NewValidationError("to", "use YYYY-MM-DD"))
			return
		}
		end := to.Add(24 * time.Hour)
		q.To = &end
	}

	logs, total, err := h.reader.List(c.Request.Context(), q)
	if err != nil {
		httperr.Respond(c, httperr.NewSystemError("list audit logs", err))
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}
