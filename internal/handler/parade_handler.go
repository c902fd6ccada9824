package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ncc-attendance-api/internal/models"
	"github.com/noah-isme/ncc-attendance-api/internal/service"
	appErrors "github.com/noah-isme/ncc-attendance-api/pkg/errors"
	"github.com/noah-isme/ncc-attendance-api/pkg/response"
)

// ParadeHandler exposes parade endpoints.
type ParadeHandler struct {
	parades *service.ParadeService
}

// NewParadeHandler constructs ParadeHandler.
func NewParadeHandler(parades *service.ParadeService) *ParadeHandler {
	return &ParadeHandler{parades: parades}
}

// List godoc
// @Summary List parades
// @Tags Parades
// @Produce json
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by parade type"
// @Param from query string false "Start date (RFC 3339)"
// @Param to query string false "End date (RFC 3339)"
// @Success 200 {object} response.Envelope
// @Router /parades [get]
func (h *ParadeHandler) List(c *gin.Context) {
	var filter models.ParadeFilter
	if status := c.Query("status"); status != "" {
		s := models.ParadeStatus(status)
		filter.Status = &s
	}
	if paradeType := c.Query("type"); paradeType != "" {
		t := models.ParadeType(paradeType)
		filter.Type = &t
	}
	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil {
			filter.DateFrom = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil {
			filter.DateTo = &ts
		}
	}

	parades, err := h.parades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, parades, nil)
}

// Get godoc
// @Summary Get a parade
// @Tags Parades
// @Produce json
// @Param id path string true "Parade ID"
// @Success 200 {object} response.Envelope
// @Router /parades/{id} [get]
func (h *ParadeHandler) Get(c *gin.Context) {
	parade, err := h.parades.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, parade, nil)
}

// Create godoc
// @Summary Schedule a parade
// @Tags Parades
// @Accept json
// @Produce json
// @Param payload body service.CreateParadeRequest true "Parade payload"
// @Success 201 {object} response.Envelope
// @Router /parades [post]
func (h *ParadeHandler) Create(c *gin.Context) {
	var req service.CreateParadeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	parade, err := h.parades.Create(c.Request.Context(), req, principal.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, parade)
}

// Update godoc
// @Summary Update a parade
// @Tags Parades
// @Accept json
// @Produce json
// @Param id path string true "Parade ID"
// @Param payload body service.UpdateParadeRequest true "Parade payload"
// @Success 200 {object} response.Envelope
// @Router /parades/{id} [put]
func (h *ParadeHandler) Update(c *gin.Context) {
	var req service.UpdateParadeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	parade, err := h.parades.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, parade, nil)
}

type updateParadeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Change a parade's lifecycle status
// @Tags Parades
// @Accept json
// @Produce json
// @Param id path string true "Parade ID"
// @Param payload body updateParadeStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /parades/{id}/status [patch]
func (h *ParadeHandler) UpdateStatus(c *gin.Context) {
	var req updateParadeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	parade, err := h.parades.UpdateStatus(c.Request.Context(), c.Param("id"), models.ParadeStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, parade, nil)
}

// Delete godoc
// @Summary Delete a parade and its attendance
// @Tags Parades
// @Produce json
// @Param id path string true "Parade ID"
// @Success 204 "No Content"
// @Router /parades/{id} [delete]
func (h *ParadeHandler) Delete(c *gin.Context) {
	if err := h.parades.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
