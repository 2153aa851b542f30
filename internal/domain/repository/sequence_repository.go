package repository

import "context"

// SequenceRepository mantiene un contador por (empresa, prefijo con periodo).
type SequenceRepository interface {
	// Next incrementa el contador de forma atómica y devuelve el nuevo valor.
	// La fila queda bloqueada hasta el fin de la transacción.
	Next(ctx context.Context, companyID, prefix string) (int64, error)
	// Exists indica si el número ya está usado en la tabla dueña de la serie (kind = "ENT", "OC", ...).
	Exists(ctx context.Context, companyID, kind, number string) (bool, error)
}
