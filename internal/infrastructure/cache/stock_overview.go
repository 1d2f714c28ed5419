// Package cache implementa el cache Redis de la vista de inventario.
// La vista es consultiva (los traslados re-validan contra la BD al
// completarse), así que un TTL corto más invalidación al completar alcanza.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dariomv/puntoventa-api/internal/application/dto"
	"github.com/dariomv/puntoventa-api/internal/application/transfer"
	"github.com/dariomv/puntoventa-api/internal/application/usecase"
	"github.com/dariomv/puntoventa-api/pkg/config"
)

const (
	overviewKeyPrefix = "stock_overview"
	scanBatchSize     = 100
)

var _ usecase.StockOverviewCache = (*StockOverviewCache)(nil)
var _ transfer.StockCacheInvalidator = (*StockOverviewCache)(nil)

// StockOverviewCache cachea la vista de stock por establecimiento y página.
type StockOverviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New crea el cache Redis. Si cfg.Enabled es false devuelve nil, nil y los
// casos de uso siguen funcionando directo contra la BD.
func New(cfg config.CacheConfig) (*StockOverviewCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Pass,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &StockOverviewCache{client: client, ttl: cfg.TTL}, nil
}

// Get devuelve la página cacheada; el segundo valor indica hit.
func (c *StockOverviewCache) Get(ctx context.Context, establishmentID string, limit, offset int) ([]dto.StockOverviewRow, bool, error) {
	payload, err := c.client.Get(ctx, overviewKey(establishmentID, limit, offset)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var rows []dto.StockOverviewRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false, fmt.Errorf("decode stock overview cache: %w", err)
	}
	return rows, true, nil
}

// Set guarda la página con el TTL configurado.
func (c *StockOverviewCache) Set(ctx context.Context, establishmentID string, limit, offset int, rows []dto.StockOverviewRow) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode stock overview cache: %w", err)
	}
	if err := c.client.Set(ctx, overviewKey(establishmentID, limit, offset), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// InvalidateOverview borra todas las páginas cacheadas del establecimiento
// (se invoca al completar un traslado).
func (c *StockOverviewCache) InvalidateOverview(ctx context.Context, establishmentID string) error {
	pattern := fmt.Sprintf("%s:%s:*", overviewKeyPrefix, establishmentID)
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func overviewKey(establishmentID string, limit, offset int) string {
	return fmt.Sprintf("%s:%s:%d:%d", overviewKeyPrefix, establishmentID, limit, offset)
}
