package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
)

// DefaultSequenceAttempts es el máximo de incrementos por número cuando hay choques con números existentes.
const DefaultSequenceAttempts = 50

// Sequencer asigna consecutivos por (empresa, serie, periodo).
// Debe llamarse dentro de la transacción que persiste el documento: el contador queda bloqueado hasta el commit.
type Sequencer struct {
	maxAttempts int
}

// NewSequencer construye el generador. maxAttempts <= 0 usa DefaultSequenceAttempts.
func NewSequencer(maxAttempts int) *Sequencer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultSequenceAttempts
	}
	return &Sequencer{maxAttempts: maxAttempts}
}

// Next devuelve el siguiente número libre de la serie, ej. "SAL-202601-000043".
// Si el número ya existe (datos importados o migrados) vuelve a incrementar el contador.
func (s *Sequencer) Next(ctx context.Context, repos TxRepos, companyID string, kind inventory.DocumentKind, at time.Time) (string, error) {
	prefix := kind.Prefix(at)
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		seq, err := repos.Sequences.Next(ctx, companyID, prefix)
		if err != nil {
			return "", err
		}
		number := kind.Format(at, seq)
		taken, err := repos.Sequences.Exists(ctx, companyID, string(kind), number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
	return "", fmt.Errorf("%w: serie %s tras %d intentos", domain.ErrSequenceExhausted, prefix, s.maxAttempts)
}
