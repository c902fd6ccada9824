package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	"github.com/noah-isme/ncc-attendance-api/internal/service"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
	"github.com/noah-isme/ncc-attendance-api/pkg/response"
)

// EmailHandler exposes manual report email triggers.
type EmailHandler struct {
	emails  *service.EmailService
	metrics *service.MetricsService
}

// NewEmailHandler constructs EmailHandler.
func NewEmailHandler(emails *service.EmailService, metrics *service.MetricsService) *EmailHandler {
	return &EmailHandler{emails: emails, metrics: metrics}
}

// Branches godoc
// @Summary List branches with their configured department inboxes
// @Tags Email
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /email/branches [get]
func (h *EmailHandler) Branches(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.emails.Branches(), nil)
}

// SendWeekly godoc
// @Summary Queue the weekly report email for one branch
// @Tags Email
// @Produce json
// @Param branch path string true "Branch code"
// @Success 202 {object} response.Envelope
// @Router /email/weekly/{branch} [post]
func (h *EmailHandler) SendWeekly(c *gin.Context) {
	branch := models.Branch(strings.ToUpper(c.Param("branch")))
	if err := h.emails.SendWeeklyBranchReport(c.Request.Context(), branch); err != nil {
		h.metrics.RecordEmailFailed()
		response.Error(c, err)
		return
	}
	h.metrics.RecordEmailQueued()
	response.JSON(c, http.StatusAccepted, gin.H{"branch": branch, "queued": true}, nil)
}

// SendWeeklyAll godoc
// @Summary Queue weekly report emails for every branch
// @Tags Email
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /email/weekly-all [post]
func (h *EmailHandler) SendWeeklyAll(c *gin.Context) {
	summary := h.emails.SendWeeklyAll(c.Request.Context())
	for range summary.Sent {
		h.metrics.RecordEmailQueued()
	}
	for range summary.Failed {
		h.metrics.RecordEmailFailed()
	}
	status := http.StatusAccepted
	if len(summary.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, summary, nil)
}

// SendDaily godoc
// @Summary Queue daily parade report emails, one per parade and branch
// @Tags Email
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 202 {object} response.Envelope
// @Router /email/daily-parade [post]
func (h *EmailHandler) SendDaily(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			day = ts
		}
	}
	summary, err := h.emails.SendDailyParadeReports(c.Request.Context(), day)
	if err != nil {
		h.metrics.RecordEmailFailed()
		response.Error(c, err)
		return
	}
	for range summary.Sent {
		h.metrics.RecordEmailQueued()
	}
	for range summary.Failed {
		h.metrics.RecordEmailFailed()
	}
	status := http.StatusAccepted
	if len(summary.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, summary, nil)
}

type testEmailRequest struct {
	To string `json:"to" binding:"required"`
}

// SendTest godoc
// @Summary Queue a test email to verify transport configuration
// @Tags Email
// @Accept json
// @Produce json
// @Param payload body testEmailRequest true "Recipient"
// @Success 202 {object} response.Envelope
// @Router /email/test [post]
func (h *EmailHandler) SendTest(c *gin.Context) {
	var req testEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.emails.SendTest(c.Request.Context(), req.To); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"to": req.To, "queued": true}, nil)
}
