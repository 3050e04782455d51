package handler

import (
	"net/http"

	"agartpos/internal/apierror"
	"agartpos/internal/dto"
	"agartpos/internal/middleware"
	"agartpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SaleHandler struct {
	sales service.SaleService
}

func NewSaleHandler(sales service.SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// Create godoc
// @Summary  Process a checkout
// @Tags     sales
// @Accept   json
// @Produce  json
// @Param    request body dto.SaleRequest true "sale"
// @Success  201 {object} dto.SaleResponse
// @Failure  409 {object} apierror.APIError "insufficient stock or credit limit exceeded"
// @Failure  422 {object} apierror.APIError "credit sale without customer"
// @Router   /v1/sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.SaleRequest
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

	resp, err := h.sales.ProcessSale(c.Request.Context(), staffID, req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.APIError{Detail: "invalid sale id"})
		return
	}
	resp, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.APIError{Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SaleHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.sales.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SaleHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.APIError{Detail: "invalid sale id"})
		return
	}
	var req dto.SaleStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.sales.MarkDelivered(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusConflict, apierror.APIError{Detail: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
