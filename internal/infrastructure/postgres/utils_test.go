package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	domaininv "github.com/jhoicas/almacen-api/internal/domain/inventory"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("conexión cerrada")))
}

func TestWhereBuilder_Placeholders(t *testing.T) {
	w := &whereBuilder{}
	w.add("company_id = ?", "T1")
	w.add("type = ?", "EXIT")
	page := pageSQL(w, 50, 100)

	assert.Equal(t, " WHERE company_id = $1 AND type = $2", w.sql())
	assert.Equal(t, " LIMIT $3 OFFSET $4", page)
	assert.Equal(t, []any{"T1", "EXIT", 50, 100}, w.args)

	assert.Empty(t, pageSQL(&whereBuilder{}, 0, 0))
}

func TestSequenceTables_CubreTodasLasSeries(t *testing.T) {
	for _, k := range []domaininv.DocumentKind{
		domaininv.DocMovementEntry, domaininv.DocMovementExit, domaininv.DocMovementTransfer,
		domaininv.DocMovementAdjustment, domaininv.DocPurchaseOrder, domaininv.DocQuotation,
		domaininv.DocRequisition, domaininv.DocExitVoucher, domaininv.DocEppIssuance, domaininv.DocEquipmentLoan,
	} {
		assert.Contains(t, sequenceTables, string(k))
	}
}
