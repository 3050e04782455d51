package handler

import (
	"net/http"
	"strconv"

	"agartpos/internal/apierror"
	"agartpos/internal/dto"
	"agartpos/internal/middleware"
	"agartpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShiftHandler struct {
	shifts service.ShiftService
}

func NewShiftHandler(shifts service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shifts: shifts}
}

// Open godoc
// @Summary  Open a shift with a counted cash float
// @Tags     shifts
// @Accept   json
// @Produce  json
// @Param    request body dto.OpenShiftRequest true "opening"
// @Success  201 {object} dto.ShiftResponse
// @Failure  409 {object} apierror.APIError "staff already has an open shift"
// @Router   /v1/shifts [post]
func (h *ShiftHandler) Open(c *gin.Context) {
	var req dto.OpenShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.APIError{Detail: "authentication required"})
		return
	}
	staffID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.APIError{Detail: "invalid token subject"})
		return
	}

	resp, err := h.shifts.Open(c.Request.Context(), staffID, claims.Username, req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary  Close a shift, reconciling counted cash against expected cash
// @Tags     shifts
// @Accept   json
// @Produce  json
// @Param    request body dto.CloseShiftRequest true "closing"
// @Success  200 {object} dto.ShiftResponse
// @Failure  409 {object} apierror.APIError "shift is not open"
// @Router   /v1/shifts/close [post]
func (h *ShiftHandler) Close(c *gin.Context) {
	var req dto.CloseShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.shifts.Close(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ShiftHandler) Active(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierror.APIError{Detail: "authentication required"})
		return
	}
	staffID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.APIError{Detail: "invalid token subject"})
		return
	}
	resp, err := h.shifts.Active(c.Request.Context(), staffID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.APIError{Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ShiftHandler) Report(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.APIError{Detail: "invalid shift id"})
		return
	}
	resp, err := h.shifts.Report(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ShiftHandler) History(c *gin.Context) {
	var storeID *uuid.UUID
	if sid := c.Query("store_id"); sid != "" {
		id, err := uuid.Parse(sid)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.APIError{Detail: "invalid store_id"})
			return
		}
		storeID = &id
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.shifts.History(c.Request.Context(), storeID, page, limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
