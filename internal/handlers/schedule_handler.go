package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	usecase "github.com/BruksfildServices01/salon-scheduler/internal/usecase/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type ScheduleHandler struct {
	mutations *usecase.MutationService
	queries   *usecase.QueryService
}

func NewScheduleHandler(
	mutations *usecase.MutationService,
	queries *usecase.QueryService,
) *ScheduleHandler {
	return &ScheduleHandler{
		mutations: mutations,
		queries:   queries,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type BulkCreateRequest struct {
	Windows []usecase.WindowInput `json:"windows"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type ConflictQuery struct {
	Date      string `form:"date" json:"date" binding:"required,datetime=2006-01-02"`
	Start     string `form:"start" json:"start" binding:"required,hhmm"`
	End       string `form:"end" json:"end" binding:"required,hhmm"`
	ExcludeID string `form:"exclude_id" json:"exclude_id" binding:"omitempty,uuid"`
}

// ======================================================
// MUTATIONS
// ======================================================

func (h *ScheduleHandler) Create(c *gin.Context) {
	ac, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	staffID, ok := uuidParam(c, "staffId")
	if !ok {
		return
	}

	var req usecase.WindowInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	row, err := h.mutations.Create(c.Request.Context(), ac, usecase.CreateInput{
		StaffID: staffID,
		Window:  req,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, dto.FromStaffSchedule(*row))
}

func (h *ScheduleHandler) BulkCreate(c *gin.Context) {
	ac, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	staffID, ok := uuidParam(c, "staffId")
	if !ok {
		return
	}

	var req BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	rows, err := h.mutations.BulkCreate(c.Request.Context(), ac, usecase.BulkCreateInput{
		StaffID: staffID,
		Windows: req.Windows,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, httpresp.ListResponse[dto.StaffScheduleDTO]{
		Data:  dto.FromStaffSchedules(rows),
		Total: len(rows),
	})
}

func (h *ScheduleHandler) Update(c *gin.Context) {
	ac, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var patch usecase.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		bindFailed(c, err)
		return
	}

	row, err := h.mutations.Update(c.Request.Context(), ac, id, patch)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.FromStaffSchedule(*row))
}

func (h *ScheduleHandler) SetActive(c *gin.Context) {
	ac, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	row, err := h.mutations.SetActive(c.Request.Context(), ac, id, *req.IsActive)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.FromStaffSchedule(*row))
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	ac, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.mutations.Delete(c.Request.Context(), ac, id); err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.NoContent(c)
}

// ======================================================
// QUERIES
// ======================================================

func (h *ScheduleHandler) ListSalon(c *gin.Context) {
	ac, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	salonID, ok := uuidParam(c, "salonId")
	if !ok {
		return
	}

	var r usecase.DateRange
	if err := c.ShouldBindQuery(&r); err != nil {
		bindFailed(c, err)
		return
	}

	items, err := h.queries.ListSalonSchedules(c.Request.Context(), ac, salonID, r)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, items)
}

func (h *ScheduleHandler) ListStaff(c *gin.Context) {
	ac, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	staffID, ok := uuidParam(c, "staffId")
	if !ok {
		return
	}

	var r usecase.DateRange
	if err := c.ShouldBindQuery(&r); err != nil {
		bindFailed(c, err)
		return
	}

	items, err := h.queries.ListStaffSchedule(c.Request.Context(), ac, staffID, r)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, items)
}

func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	ac, ok := middleware.RequireAuth(c)
	if !ok {
		return
	}
	staffID, ok := uuidParam(c, "staffId")
	if !ok {
		return
	}

	var q ConflictQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	in := usecase.ConflictInput{
		StaffID:   staffID,
		Date:      q.Date,
		StartTime: q.Start,
		EndTime:   q.End,
	}
	if q.ExcludeID != "" {
		id := uuid.MustParse(q.ExcludeID)
		in.ExcludeID = &id
	}

	report, err := h.queries.GetConflicts(c.Request.Context(), ac, in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, report)
}

// ======================================================
// HELPERS
// ======================================================

// bindFailed reports tag failures as validation errors and anything else
// (malformed JSON, wrong types) as a bad request.
func bindFailed(c *gin.Context, err error) {
	var ve *httperr.ValidationError
	if errors.As(validators.Translate(err), &ve) {
		httperr.Respond(c, ve)
		return
	}
	httperr.BadRequest(c, "invalid_request", "invalid request payload")
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.Respond(c, httperr.NewValidationError(name, "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
