package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.EppIssuanceRepository = (*EppIssuanceRepo)(nil)

// EppIssuanceRepo entregas de EPP sobre PostgreSQL.
type EppIssuanceRepo struct {
	q Querier
}

// NewEppIssuanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEppIssuanceRepository(q Querier) *EppIssuanceRepo {
	return &EppIssuanceRepo{q: q}
}

const eppColumns = `id, company_id, number, warehouse_id, worker_id, renewal_of, movement_id, issued_at, created_by, created_at`

// Create persiste la entrega con sus líneas.
func (r *EppIssuanceRepo) Create(ctx context.Context, i *entity.EppIssuance) error {
	_, err := r.q.Exec(ctx, `INSERT INTO epp_issuances (`+eppColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		i.ID, i.CompanyID, i.Number, i.WarehouseID, i.Worker.ID, nullIfEmpty(i.RenewalOf),
		nullIfEmpty(i.MovementID), i.IssuedAt, nullIfEmpty(i.CreatedBy), i.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("entrega %s: %w", i.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert epp issuance: %w", err)
	}
	for _, l := range i.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.IssuanceID = i.ID
		if _, err := r.q.Exec(ctx, `
			INSERT INTO epp_issuance_lines (id, issuance_id, product_id, quantity, size)
			VALUES ($1, $2, $3, $4, $5)`,
			l.ID, l.IssuanceID, l.ProductID, l.Quantity, nullIfEmpty(l.Size)); err != nil {
			return fmt.Errorf("insert epp issuance line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la entrega con sus líneas; nil, nil si no existe.
func (r *EppIssuanceRepo) GetByID(ctx context.Context, companyID, id string) (*entity.EppIssuance, error) {
	list, err := r.query(ctx, `SELECT `+eppColumns+` FROM epp_issuances WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListByWorker lista las entregas de un trabajador, la más reciente primero.
func (r *EppIssuanceRepo) ListByWorker(ctx context.Context, companyID, workerID string) ([]*entity.EppIssuance, error) {
	return r.query(ctx, `SELECT `+eppColumns+` FROM epp_issuances
		WHERE company_id = $1 AND worker_id = $2 ORDER BY issued_at DESC`, companyID, workerID)
}

func (r *EppIssuanceRepo) query(ctx context.Context, query string, args ...any) ([]*entity.EppIssuance, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list epp issuances: %w", err)
	}
	var (
		list []*entity.EppIssuance
		byID = map[string]*entity.EppIssuance{}
		ids  []string
	)
	for rows.Next() {
		var (
			i                                entity.EppIssuance
			renewalOf, movementID, createdBy *string
		)
		if err := rows.Scan(&i.ID, &i.CompanyID, &i.Number, &i.WarehouseID, &i.Worker.ID, &renewalOf,
			&movementID, &i.IssuedAt, &createdBy, &i.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan epp issuance: %w", err)
		}
		i.Worker.Kind = entity.ReceptorWorker
		i.RenewalOf, i.MovementID, i.CreatedBy = deref(renewalOf), deref(movementID), deref(createdBy)
		list = append(list, &i)
		byID[i.ID] = &i
		ids = append(ids, i.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list epp issuances: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	lines, err := r.q.Query(ctx, `
		SELECT id, issuance_id, product_id, quantity, size
		FROM epp_issuance_lines WHERE issuance_id = ANY($1) ORDER BY pos`, ids)
	if err != nil {
		return nil, fmt.Errorf("list epp issuance lines: %w", err)
	}
	defer lines.Close()
	for lines.Next() {
		var (
			l    entity.EppIssuanceLine
			size *string
		)
		if err := lines.Scan(&l.ID, &l.IssuanceID, &l.ProductID, &l.Quantity, &size); err != nil {
			return nil, fmt.Errorf("scan epp issuance line: %w", err)
		}
		l.Size = deref(size)
		if i, ok := byID[l.IssuanceID]; ok {
			i.Lines = append(i.Lines, &l)
		}
	}
	return list, lines.Err()
}
