package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EppIssuance registra la entrega de elementos de protección personal (EPP) a un trabajador.
// Una renovación es una nueva entrega con RenewalOf apuntando a la anterior.
type EppIssuance struct {
	ID          string
	CompanyID   string
	Number      string
	WarehouseID string
	Worker      Receptor
	RenewalOf   string
	MovementID  string
	IssuedAt    time.Time
	CreatedBy   string
	CreatedAt   time.Time
	Lines       []*EppIssuanceLine
}

// EppIssuanceLine es un elemento entregado.
type EppIssuanceLine struct {
	ID         string
	IssuanceID string
	ProductID  string
	Quantity   decimal.Decimal
	Size       string
}
