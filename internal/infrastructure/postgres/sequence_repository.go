package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador por (empresa, prefijo) en document_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// sequenceTables tabla dueña de cada serie.
var sequenceTables = map[string]string{
	"ENT": "inventory_movements",
	"SAL": "inventory_movements",
	"TRF": "inventory_movements",
	"AJU": "inventory_movements",
	"OC":  "purchase_orders",
	"COT": "quotations",
	"REQ": "requisitions",
	"VS":  "exit_vouchers",
	"EPP": "epp_issuances",
	"PRE": "equipment_loans",
}

// Next incrementa el contador con un upsert; la fila queda bloqueada hasta el fin de la transacción,
// así dos transacciones concurrentes de la misma serie se serializan.
func (r *SequenceRepo) Next(ctx context.Context, companyID, prefix string) (int64, error) {
	query := `
		INSERT INTO document_sequences (company_id, prefix, last_value, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (company_id, prefix)
		DO UPDATE SET last_value = document_sequences.last_value + 1, updated_at = now()
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, companyID, prefix).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", prefix, err)
	}
	return n, nil
}

// Exists indica si el número ya está usado en la tabla de la serie.
func (r *SequenceRepo) Exists(ctx context.Context, companyID, kind, number string) (bool, error) {
	table, ok := sequenceTables[kind]
	if !ok {
		return false, fmt.Errorf("serie desconocida %q", kind)
	}
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE company_id = $1 AND number = $2)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, companyID, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("check number %s: %w", number, err)
	}
	return exists, nil
}
