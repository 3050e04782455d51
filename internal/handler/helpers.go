package handler

import (
	"errors"
	"net/http"
	"reflect"

	"agartpos/internal/apierror"
	"agartpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Decimal fields validate as their float value so min/max tags work.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// bindAndValidate binds the JSON body and runs struct validation. On failure
// it writes the error response and returns false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.APIError{Detail: "malformed request body: " + err.Error()})
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = "failed validation: " + fe.Tag()
			}
			c.JSON(http.StatusBadRequest, apierror.ValidationError{Detail: "validation failed", Fields: fields})
			return false
		}
		c.JSON(http.StatusBadRequest, apierror.APIError{Detail: err.Error()})
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.APIError{Detail: "invalid query parameters: " + err.Error()})
		return false
	}
	return true
}

// respondDomainError maps typed domain errors to precise HTTP statuses. The
// error messages carry the structured detail (names, quantities, limits), so
// clients get actionable text rather than a generic failure.
func respondDomainError(c *gin.Context, err error) {
	var (
		productNotFound  *service.ProductNotFoundError
		customerNotFound *service.CustomerNotFoundError
		insufficient     *service.InsufficientStockError
		creditLimit      *service.CreditLimitExceededError
		shiftOpen        *service.ShiftAlreadyOpenError
		noShift          *service.NoActiveShiftError
		customerRequired *service.CustomerRequiredError
	)

	switch {
	case errors.As(err, &productNotFound), errors.As(err, &customerNotFound):
		c.JSON(http.StatusNotFound, apierror.APIError{Detail: err.Error()})
	case errors.As(err, &insufficient), errors.As(err, &creditLimit), errors.As(err, &shiftOpen):
		c.JSON(http.StatusConflict, apierror.APIError{Detail: err.Error()})
	case errors.As(err, &noShift):
		c.JSON(http.StatusConflict, apierror.APIError{Detail: err.Error()})
	case errors.As(err, &customerRequired):
		c.JSON(http.StatusUnprocessableEntity, apierror.APIError{Detail: err.Error()})
	default:
		c.JSON(http.StatusBadRequest, apierror.APIError{Detail: err.Error()})
	}
}
