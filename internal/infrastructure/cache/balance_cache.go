// Package cache publica en Redis la foto de los saldos afectados por cada movimiento confirmado.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

var _ inventory.BalancePublisher = (*BalanceCache)(nil)

const keyPrefix = "almacen:balance"

// New crea el cliente Redis y verifica la conexión.
func New(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

// snapshot es lo que se guarda por saldo.
type snapshot struct {
	CompanyID   string          `json:"company_id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	MinStock    decimal.Decimal `json:"min_stock"`
	MaxStock    decimal.Decimal `json:"max_stock"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BalanceCache guarda la última foto de cada saldo con TTL. La fuente de verdad sigue siendo la BD;
// un fallo de Redis solo se registra.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewBalanceCache construye la caché.
func NewBalanceCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *BalanceCache {
	return &BalanceCache{client: client, ttl: ttl, log: log}
}

// Key compone la clave Redis del saldo.
func Key(k entity.BalanceKey) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, k.CompanyID, k.WarehouseID, k.ProductID)
}

// Publish escribe los saldos en un pipeline. Se llama después del commit.
func (c *BalanceCache) Publish(ctx context.Context, balances []*entity.StockBalance) {
	if c == nil || c.client == nil || len(balances) == 0 {
		return
	}
	pipe := c.client.Pipeline()
	for _, b := range balances {
		raw, err := json.Marshal(snapshot{
			CompanyID:   b.CompanyID,
			ProductID:   b.ProductID,
			WarehouseID: b.WarehouseID,
			Quantity:    b.Quantity,
			UnitCost:    b.UnitCost,
			MinStock:    b.MinStock,
			MaxStock:    b.MaxStock,
			UpdatedAt:   b.UpdatedAt,
		})
		if err != nil {
			c.log.Warn().Err(err).Str("product_id", b.ProductID).Msg("no se pudo serializar saldo")
			continue
		}
		pipe.Set(ctx, Key(b.Key()), raw, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn().Err(err).Int("balances", len(balances)).Msg("no se pudo publicar saldos en redis")
	}
}

// Lookup devuelve el saldo en caché o nil si no está.
func (c *BalanceCache) Lookup(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var s snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &entity.StockBalance{
		CompanyID:   s.CompanyID,
		ProductID:   s.ProductID,
		WarehouseID: s.WarehouseID,
		Quantity:    s.Quantity,
		UnitCost:    s.UnitCost,
		MinStock:    s.MinStock,
		MaxStock:    s.MaxStock,
		UpdatedAt:   s.UpdatedAt,
	}, nil
}
