package handler

import (
	"net/http"

	"agartpos/internal/apierror"
	"agartpos/internal/dto"
	"agartpos/internal/middleware"
	"agartpos/internal/repository"
	"agartpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	stock service.StockService
}

func NewInventoryHandler(stock service.StockService) *InventoryHandler {
	return &InventoryHandler{stock: stock}
}

// Adjust godoc
// @Summary  Apply a manual stock movement (stock-in or adjustment)
// @Tags     inventory
// @Accept   json
// @Produce  json
// @Param    id      path string                     true "product id"
// @Param    request body dto.StockAdjustmentRequest true "movement"
// @Success  200 {object} dto.StockAdjustmentResponse
// @Failure  409 {object} apierror.APIError "would drive stock negative"
// @Router   /v1/products/{id}/stock [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.APIError{Detail: "invalid product id"})
		return
	}
	var req dto.StockAdjustmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var actorID *uuid.UUID
	if claims, ok := middleware.GetClaims(c); ok {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			actorID = &id
		}
	}

	resp, err := h.stock.ApplyAdjustment(c.Request.Context(), productID, req, actorID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) Movements(c *gin.Context) {
	var filter repository.InventoryLogFilter
	if !bindQuery(c, &filter) {
		return
	}
	if pid := c.Query("product_id"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.APIError{Detail: "invalid product_id"})
			return
		}
		filter.ProductID = &id
	}
	resp, err := h.stock.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
