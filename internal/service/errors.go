package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Typed domain errors. All of these are expected, recoverable conditions —
// handlers match them with errors.As and map them to precise HTTP responses.
// They carry enough detail (names, numbers) that the client message never
// degrades to a generic "operation failed".

type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available, %d requested",
		e.ProductName, e.Available, e.Requested)
}

type CustomerNotFoundError struct {
	CustomerID uuid.UUID
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer %s not found", e.CustomerID)
}

// CustomerRequiredError rejects a credit sale that has no linked customer.
type CustomerRequiredError struct{}

func (e *CustomerRequiredError) Error() string {
	return "credit sales require a customer"
}

type CreditLimitExceededError struct {
	CustomerName string
	Limit        decimal.Decimal
	NewBalance   decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded for %q: limit %s, would owe %s",
		e.CustomerName, e.Limit, e.NewBalance)
}

type ShiftAlreadyOpenError struct {
	StaffName string
	ShiftID   uuid.UUID
}

func (e *ShiftAlreadyOpenError) Error() string {
	return fmt.Sprintf("%s already has an open shift (%s)", e.StaffName, e.ShiftID)
}

type NoActiveShiftError struct {
	ShiftID uuid.UUID
}

func (e *NoActiveShiftError) Error() string {
	return fmt.Sprintf("shift %s is not open", e.ShiftID)
}
