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

type CustomerHandler struct {
	customers service.CustomerService
	credit    service.CreditService
}

func NewCustomerHandler(customers service.CustomerService, credit service.CreditService) *CustomerHandler {
	return &CustomerHandler{customers: customers, credit: credit}
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.customers.Create(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.APIError{Detail: "invalid customer id"})
		return
	}
	resp, err := h.customers.Get(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomerHandler) List(c *gin.Context) {
	var filter dto.CustomerFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.customers.List(c.Request.Context(), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Statement godoc
// @Summary  Customer credit statement: balance projection plus the journal
// @Tags     customers
// @Produce  json
// @Param    id path string true "customer id"
// @Success  200 {object} dto.StatementResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/customers/{id}/statement [get]
func (h *CustomerHandler) Statement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.APIError{Detail: "invalid customer id"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.credit.Statement(c.Request.Context(), id, page, limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Repay godoc
// @Summary  Record a credit repayment (capped to the outstanding balance)
// @Tags     customers
// @Accept   json
// @Produce  json
// @Param    id      path string               true "customer id"
// @Param    request body dto.RepaymentRequest true "repayment"
// @Success  200 {object} dto.StatementResponse
// @Router   /v1/customers/{id}/repayments [post]
func (h *CustomerHandler) Repay(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.APIError{Detail: "invalid customer id"})
		return
	}
	var req dto.RepaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var actorID *uuid.UUID
	if claims, ok := middleware.GetClaims(c); ok {
		if aid, err := uuid.Parse(claims.UserID); err == nil {
			actorID = &aid
		}
	}

	resp, err := h.credit.Repay(c.Request.Context(), id, req, actorID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
