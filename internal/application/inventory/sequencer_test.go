package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

var march = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestSequencer_ConcurrenteSinDuplicados(t *testing.T) {
	store := memory.NewStore()
	seq := inventory.NewSequencer(0)
	const n = 64

	var (
		mu   sync.Mutex
		seen = make(map[string]bool, n)
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return store.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
				number, err := seq.Next(ctx, repos, "T1", domaininv.DocExitVoucher, march)
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				assert.False(t, seen[number], "número repetido %s", number)
				seen[number] = true
				return nil
			})
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, seen, n)
	assert.True(t, seen["VS-202603-000001"])
	assert.True(t, seen["VS-202603-000064"])
}

func TestSequencer_SaltaNumerosExistentes(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	// número importado de un sistema anterior
	require.NoError(t, store.Repos().Movements.Create(ctx, &entity.InventoryMovement{
		CompanyID: "T1", Number: "ENT-202603-000001", Type: entity.MovementTypeENTRY, Status: entity.MovementStatusCompleted,
	}))

	var got string
	err := store.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		var err error
		got, err = inventory.NewSequencer(5).Next(ctx, repos, "T1", domaininv.DocMovementEntry, march)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "ENT-202603-000002", got)
}

func TestSequencer_SeriesIndependientes(t *testing.T) {
	store := memory.NewStore()
	seq := inventory.NewSequencer(0)
	var got []string
	err := store.Run(context.Background(), func(ctx context.Context, repos inventory.TxRepos) error {
		for _, c := range []struct {
			company string
			kind    domaininv.DocumentKind
			at      time.Time
		}{
			{"T1", domaininv.DocPurchaseOrder, march},
			{"T1", domaininv.DocPurchaseOrder, march.AddDate(0, 2, 0)}, // misma serie anual
			{"T2", domaininv.DocPurchaseOrder, march},
			{"T1", domaininv.DocRequisition, march},
			{"T1", domaininv.DocRequisition, march.AddDate(0, 1, 0)}, // nuevo mes, nueva serie
		} {
			n, err := seq.Next(ctx, repos, c.company, c.kind, c.at)
			if err != nil {
				return err
			}
			got = append(got, n)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"OC-2026-000001",
		"OC-2026-000002",
		"OC-2026-000001",
		"REQ-202603-000001",
		"REQ-202604-000001",
	}, got)
}

func TestSequencer_Agotado(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	for _, n := range []string{"AJU-202603-000001", "AJU-202603-000002"} {
		require.NoError(t, store.Repos().Movements.Create(ctx, &entity.InventoryMovement{CompanyID: "T1", Number: n}))
	}
	err := store.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		_, err := inventory.NewSequencer(2).Next(ctx, repos, "T1", domaininv.DocMovementAdjustment, march)
		return err
	})
	require.ErrorIs(t, err, domain.ErrSequenceExhausted)
}
