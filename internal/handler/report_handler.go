package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	"github.com/noah-isme/ncc-attendance-api/internal/service"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
	"github.com/noah-isme/ncc-attendance-api/pkg/export"
	"github.com/noah-isme/ncc-attendance-api/pkg/response"
)

// ReportHandler exposes report and dashboard endpoints.
type ReportHandler struct {
	reports *service.ReportService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
	}
}

// period parses from/to query params into a half-open [from, to) interval,
// defaulting to the last seven days. A "to" date still includes that whole
// day; the exclusive bound is the following midnight.
func period(c *gin.Context) (time.Time, time.Time) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -7)
	if raw := c.Query("from"); raw != "" {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			from = ts
		}
	}
	if raw := c.Query("to"); raw != "" {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			to = ts.Add(24 * time.Hour)
		}
	}
	return from, to
}

// Branch godoc
// @Summary Branch attendance report
// @Tags Reports
// @Produce json
// @Param branch path string true "Branch code (CSE, ECE, ...)"
// @Param from query string false "Start date (YYYY-MM-DD), defaults to seven days ago"
// @Param to query string false "End date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /reports/branch/{branch} [get]
func (h *ReportHandler) Branch(c *gin.Context) {
	from, to := period(c)
	branch := models.Branch(strings.ToUpper(c.Param("branch")))
	report, err := h.reports.BuildBranchReport(c.Request.Context(), branch, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Daily godoc
// @Summary Per-parade reports for one day
// @Tags Reports
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /reports/daily [get]
func (h *ReportHandler) Daily(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			day = ts
		}
	}
	reports, err := h.reports.BuildDailyParadeReports(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Matrix godoc
// @Summary Attendance matrix of students against parades
// @Tags Reports
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param branch query string false "Restrict to one branch code"
// @Param category query string false "Restrict to one category (C, B1, B2)"
// @Success 200 {object} response.Envelope
// @Router /reports/matrix [get]
func (h *ReportHandler) Matrix(c *gin.Context) {
	from, to := period(c)
	var filter service.MatrixFilter
	if raw := c.Query("branch"); raw != "" {
		branch := models.Branch(strings.ToUpper(raw))
		filter.Branch = &branch
	}
	if raw := c.Query("category"); raw != "" {
		category := models.Category(strings.ToUpper(raw))
		filter.Category = &category
	}
	matrix, err := h.reports.BuildMatrix(c.Request.Context(), from, to, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matrix, nil)
}

// ParadeStats godoc
// @Summary Aggregated attendance for one parade
// @Tags Reports
// @Produce json
// @Param id path string true "Parade ID"
// @Success 200 {object} response.Envelope
// @Router /reports/parade/{id} [get]
func (h *ReportHandler) ParadeStats(c *gin.Context) {
	stats, err := h.reports.ParadeStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// StudentStats godoc
// @Summary Aggregated attendance history for one student
// @Tags Reports
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /reports/student/{id} [get]
func (h *ReportHandler) StudentStats(c *gin.Context) {
	stats, err := h.reports.StudentStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Dashboard godoc
// @Summary Cached overview statistics
// @Tags Reports
// @Produce json
// @Param refresh query bool false "Drop the cached copy and recompute"
// @Success 200 {object} response.Envelope
// @Router /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	build := h.reports.Dashboard
	if c.Query("refresh") == "true" {
		build = h.reports.RefreshDashboard
	}
	stats, err := build(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ExportBranch godoc
// @Summary Export a branch report as CSV, PDF or JSON
// @Tags Reports
// @Produce octet-stream
// @Param branch path string true "Branch code"
// @Param format query string false "csv, pdf or json (default csv)"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /reports/branch/{branch}/export [get]
func (h *ReportHandler) ExportBranch(c *gin.Context) {
	from, to := period(c)
	branch := models.Branch(strings.ToUpper(c.Param("branch")))
	report, err := h.reports.BuildBranchReport(c.Request.Context(), branch, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	prefix := fmt.Sprintf("branch-report-%s", strings.ToLower(string(branch)))
	switch format {
	case "csv":
		payload, err := h.csv.Render(h.reports.BranchReportDataset(report))
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV"))
			return
		}
		serveDownload(c, export.Filename(prefix, "csv", time.Now()), "text/csv", payload)
	case "pdf":
		title := fmt.Sprintf("%s Attendance Report", report.BranchLabel)
		payload, err := h.pdf.Render(h.reports.BranchReportDataset(report), title)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF"))
			return
		}
		serveDownload(c, export.Filename(prefix, "pdf", time.Now()), "application/pdf", payload)
	case "json":
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render JSON"))
			return
		}
		serveDownload(c, export.Filename(prefix, "json", time.Now()), "application/json", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format)))
	}
}

func serveDownload(c *gin.Context, filename, contentType string, payload []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
