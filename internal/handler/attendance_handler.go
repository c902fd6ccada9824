package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ncc-attendance-api/internal/service"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
	"github.com/noah-isme/ncc-attendance-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	metrics    *service.MetricsService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, metrics: metrics}
}

// Mark godoc
// @Summary Mark attendance for one student
// @Description Re-marking the same (parade, student) pair overwrites the earlier record.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	record, created, err := h.attendance.Mark(c.Request.Context(), req, principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordMark(string(record.Status))
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(c, status, record, nil)
}

// MarkBatch godoc
// @Summary Mark attendance for many students of one parade
// @Description Entries fail independently; the response lists created, updated and per-entry errors.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.BatchMarkRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Success 207 {object} response.Envelope
// @Router /attendance/batch [post]
func (h *AttendanceHandler) MarkBatch(c *gin.Context) {
	var req service.BatchMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.attendance.MarkBatch(c.Request.Context(), req, principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if len(result.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, result, nil)
}

// Update godoc
// @Summary Correct an attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance record ID"
// @Param payload body service.UpdateAttendanceRequest true "Correction payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	var req service.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	record, err := h.attendance.Update(c.Request.Context(), c.Param("id"), req, principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete an attendance record
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance record ID"
// @Success 204 "No Content"
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByParade godoc
// @Summary List attendance for a parade
// @Tags Attendance
// @Produce json
// @Param id path string true "Parade ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/parade/{id} [get]
func (h *AttendanceHandler) ListByParade(c *gin.Context) {
	records, err := h.attendance.ListByParade(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ListByStudent godoc
// @Summary List a student's attendance history
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Param limit query int false "Maximum records to return"
// @Success 200 {object} response.Envelope
// @Router /attendance/student/{id} [get]
func (h *AttendanceHandler) ListByStudent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	records, err := h.attendance.ListByStudent(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
