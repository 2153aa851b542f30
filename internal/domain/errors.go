package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio. Los casos de uso devuelven estos sentinels (o tipos que los envuelven)
// para que la capa HTTP distinga errores corregibles por el usuario de fallos inesperados.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")
	ErrCrossTenantReference   = errors.New("referencia a recurso de otra empresa")
	ErrSequenceExhausted      = errors.New("no se pudo generar un consecutivo libre")
	ErrCeilingExceeded        = errors.New("la cantidad supera el máximo aprobado")
)

// ValidationError detalla qué campo de la entrada fue rechazado. Se compara con ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError indica que una salida dejaría el saldo en negativo.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: producto %s en bodega %s (disponible %s, solicitado %s)",
		e.ProductID, e.WarehouseID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StateTransitionError indica que la acción no aplica al estado actual del movimiento.
type StateTransitionError struct {
	MovementID string
	From       string
	Action     string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("no se puede %s el movimiento %s en estado %s", e.Action, e.MovementID, e.From)
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidStateTransition }
