// Package cache кэш ответов доступности поверх redis
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

const (
	// DefaultTTL время жизни закэшированного ответа
	DefaultTTL = 30 * time.Second

	// versionTTL живёт дольше любого ответа, чтобы старые ключи не ожили после сброса версии
	versionTTL = 48 * time.Hour
)

// Key параметры запроса доступности
// Granularity входит в ключ, поэтому смена конфигурации не отдаёт старую сетку
type Key struct {
	TenantID    int64
	ServiceID   int64
	ProviderID  *int64
	Date        types.Date
	Granularity int
}

// Metrics счётчик попаданий
type Metrics interface {
	IncCacheResult(hit bool)
}

// SlotsCache кэш доступности
// Каждая пара (tenant, date) имеет счётчик версии; Invalidate увеличивает его,
// и все ответы с прежней версией перестают читаться
type SlotsCache struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	metrics Metrics
}

// NewSlotsCache создает кэш
func NewSlotsCache(client *redis.Client, prefix string, ttl time.Duration, metrics Metrics) *SlotsCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "scheduling"
	}
	return &SlotsCache{client: client, prefix: prefix, ttl: ttl, metrics: metrics}
}

// Entry прочитанный ответ и версия (tenant, date), под которой он искался
// Version нужно передать в Set: то, что посчитано после промаха, пишется
// под версией до чтения хранилища, и Invalidate в промежутке делает запись мёртвой
type Entry struct {
	Data    []byte
	Version int64
}

// Get читает ответ; ok == false при промахе, Version заполнена в обоих случаях
func (c *SlotsCache) Get(ctx context.Context, key Key) (Entry, bool, error) {
	version, err := c.version(ctx, key.TenantID, key.Date)
	if err != nil {
		return Entry{}, false, err
	}

	data, err := c.client.Get(ctx, c.entryKey(key, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.observe(false)
		return Entry{Version: version}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache: Get: %w", err)
	}

	c.observe(true)
	return Entry{Data: data, Version: version}, true, nil
}

// Set сохраняет ответ под версией, полученной из Get
func (c *SlotsCache) Set(ctx context.Context, key Key, version int64, value []byte) error {
	if err := c.client.Set(ctx, c.entryKey(key, version), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: Set: %w", err)
	}
	return nil
}

// Invalidate сбрасывает все ответы тенанта на дату
func (c *SlotsCache) Invalidate(ctx context.Context, tenantID int64, date types.Date) error {
	versionKey := c.versionKey(tenantID, date)

	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, versionKey)
	pipe.Expire(ctx, versionKey, versionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: Invalidate: %w", err)
	}
	return nil
}

func (c *SlotsCache) version(ctx context.Context, tenantID int64, date types.Date) (int64, error) {
	version, err := c.client.Get(ctx, c.versionKey(tenantID, date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache: version: %w", err)
	}
	return version, nil
}

func (c *SlotsCache) observe(hit bool) {
	if c.metrics != nil {
		c.metrics.IncCacheResult(hit)
	}
}

func (c *SlotsCache) versionKey(tenantID int64, date types.Date) string {
	return fmt.Sprintf("%s:availability:%d:%s:version", c.prefix, tenantID, date)
}

func (c *SlotsCache) entryKey(key Key, version int64) string {
	provider := "any"
	if key.ProviderID != nil {
		provider = strconv.FormatInt(*key.ProviderID, 10)
	}
	return fmt.Sprintf("%s:availability:%d:%s:v%d:service:%d:provider:%s:g%d",
		c.prefix, key.TenantID, key.Date, version, key.ServiceID, provider, key.Granularity)
}
