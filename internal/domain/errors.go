package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el correo ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// InsufficientStockError indica que un ajuste negativo dejaría el stock por
// debajo de cero. Lleva el producto y ambos valores para que el caller pueda
// reportar un error preciso.
type InsufficientStockError struct {
	ProductID    string
	ProductName  string
	CurrentStock decimal.Decimal
	Delta        decimal.Decimal // ajuste solicitado (negativo)
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %q: stock actual %s, intento de resta %s",
		e.ProductName, e.CurrentStock.String(), e.Delta.Abs().String())
}

// Unwrap permite detectar el error con errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
