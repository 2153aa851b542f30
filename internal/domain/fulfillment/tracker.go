// Package fulfillment implementa el avance progresivo contra un tope aprobado
// (recepción de órdenes de compra, entrega de vales, atención de requisiciones, devolución de préstamos).
package fulfillment

import (
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Tracker lleva el avance de líneas de tipo L cuyo dueño tiene estados de tipo S.
// Ceiling y Progress leen los campos de la línea; SetProgress escribe el avance.
type Tracker[L any, S ~string] struct {
	Ceiling     func(*L) decimal.Decimal
	Progress    func(*L) decimal.Decimal
	SetProgress func(*L, decimal.Decimal)

	Full    S // todas las líneas en su tope
	Partial S // alguna línea con avance, no todas completas
}

// Record suma amount al avance de la línea. Rechaza montos no positivos
// y cualquier avance que supere el tope; en ese caso la línea no cambia.
func (t Tracker[L, S]) Record(line *L, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	next := t.Progress(line).Add(amount)
	if ceiling := t.Ceiling(line); next.GreaterThan(ceiling) {
		return fmt.Errorf("%w: avance %s, tope %s", domain.ErrCeilingExceeded, next.String(), ceiling.String())
	}
	t.SetProgress(line, next)
	return nil
}

// Remaining devuelve lo que falta para llegar al tope.
func (t Tracker[L, S]) Remaining(line *L) decimal.Decimal {
	return t.Ceiling(line).Sub(t.Progress(line))
}

// Resolve recalcula el estado del dueño a partir de todas sus líneas.
// Devuelve Full si todas están en su tope, Partial si alguna tiene avance, o current si ninguna.
func (t Tracker[L, S]) Resolve(lines []*L, current S) S {
	if len(lines) == 0 {
		return current
	}
	complete, touched := 0, 0
	for _, l := range lines {
		p := t.Progress(l)
		if p.IsPositive() {
			touched++
		}
		if p.Equal(t.Ceiling(l)) {
			complete++
		}
	}
	switch {
	case complete == len(lines):
		return t.Full
	case touched > 0:
		return t.Partial
	}
	return current
}
