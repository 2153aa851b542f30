package cache_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/cache"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

func newCache(t *testing.T) (*cache.BalanceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewBalanceCache(client, time.Minute, zerolog.Nop()), mr
}

func TestPublishYLookup(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	b := &entity.StockBalance{
		CompanyID: "T1", ProductID: "P1", WarehouseID: "W1",
		Quantity: decimal.RequireFromString("12"), UnitCost: decimal.RequireFromString("12.5"),
	}

	c.Publish(ctx, []*entity.StockBalance{b})

	assert.True(t, mr.Exists("almacen:balance:T1:W1:P1"))
	got, err := c.Lookup(ctx, b.Key())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Quantity.Equal(b.Quantity))
	assert.True(t, got.UnitCost.Equal(b.UnitCost))

	mr.FastForward(2 * time.Minute)
	got, err = c.Lookup(ctx, b.Key())
	require.NoError(t, err)
	assert.Nil(t, got, "expira con el TTL")
}

func TestPublish_RedisCaidoNoFalla(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()

	assert.NotPanics(t, func() {
		c.Publish(context.Background(), []*entity.StockBalance{{CompanyID: "T1", ProductID: "P1", WarehouseID: "W1"}})
	})
}

func TestLookup_SinCliente(t *testing.T) {
	var c *cache.BalanceCache
	got, err := c.Lookup(context.Background(), entity.BalanceKey{CompanyID: "T1"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetStockLimits_ActualizaCache(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "P1", CompanyID: "T1", SKU: "GUANTE", Name: "Guante"}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "W1", CompanyID: "T1", Name: "Principal"}))
	uc := inventory.NewMovementUseCase(store, repos.Movements, repos.Stock, repos.Kardex, inventory.Options{}, zerolog.Nop()).
		WithBalancePublisher(c)

	_, err := uc.Create(ctx, inventory.MovementInput{
		CompanyID: "T1", Type: entity.MovementTypeENTRY, DestWarehouseID: "W1",
		Lines: []inventory.MovementLineInput{{ProductID: "P1", Quantity: decimal.NewFromInt(4), UnitCost: decimal.NewFromInt(3)}},
	})
	require.NoError(t, err)
	key := entity.BalanceKey{CompanyID: "T1", ProductID: "P1", WarehouseID: "W1"}

	_, err = uc.SetStockLimits(ctx, key, decimal.NewFromInt(10), decimal.NewFromInt(20))
	require.NoError(t, err)

	got, err := c.Lookup(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.MinStock.Equal(decimal.NewFromInt(10)), "min %s", got.MinStock)
	assert.True(t, got.MaxStock.Equal(decimal.NewFromInt(20)), "max %s", got.MaxStock)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(4)))
}
