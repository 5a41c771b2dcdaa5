package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Clock источник времени; в тестах подменяется фиктивным
type Clock interface {
	Now() time.Time
}

// SystemClock реальное время
type SystemClock struct{}

// Now возвращает текущее время
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Cache кеш товаров по ID.
//
// Инвалидация при записи выполняется синхронно до подтверждения
// записи вызывающему; TTL служит единственным страховочным механизмом
// вытеснения. Отрицательные результаты (NotFound) не кешируются.
type Cache interface {
	// Get возвращает товар из кеша, либо false при промахе
	Get(ctx context.Context, id int64) (*Product, bool)
	// Set помещает товар в кеш с TTL
	Set(ctx context.Context, id int64, p *Product)
	// Evict удаляет запись из кеша
	Evict(ctx context.Context, id int64)
}

// MemoryCache кеш в памяти процесса с инжектируемыми часами.
// Чтение, гонящееся с инвалидацией, видит либо старую запись,
// либо промах, но никогда частичное состояние.
type MemoryCache struct {
	entries map[int64]memoryEntry
	ttl     time.Duration
	clock   Clock
	mu      sync.RWMutex
}

type memoryEntry struct {
	product   Product
	expiresAt time.Time
}

// NewMemoryCache создает кеш в памяти
func NewMemoryCache(ttl time.Duration, clock Clock) *MemoryCache {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MemoryCache{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get возвращает товар, если запись не истекла
func (c *MemoryCache) Get(ctx context.Context, id int64) (*Product, bool) {
	c.mu.RLock()
	entry, exists := c.entries[id]
	c.mu.RUnlock()

	if !exists || c.clock.Now().After(entry.expiresAt) {
		return nil, false
	}

	p := entry.product
	return &p, true
}

// Set помещает товар в кеш
func (c *MemoryCache) Set(ctx context.Context, id int64, p *Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[id] = memoryEntry{
		product:   *p,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

// Evict удаляет запись
func (c *MemoryCache) Evict(ctx context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
}

// RedisCache кеш товаров в Redis; TTL записей обслуживает сервер
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache создает Redis кеш товаров
func NewRedisCache(addr string, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Close закрывает соединение с Redis
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func cacheKey(id int64) string {
	return fmt.Sprintf("products::%d", id)
}

// Get возвращает товар из Redis
func (c *RedisCache) Get(ctx context.Context, id int64) (*Product, bool) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", zap.Int64("product_id", id), zap.Error(err))
		}
		return nil, false
	}

	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Warn("cache entry corrupted, evicting",
			zap.Int64("product_id", id), zap.Error(err))
		c.Evict(ctx, id)
		return nil, false
	}

	return &p, true
}

// Set помещает товар в Redis с TTL
func (c *RedisCache) Set(ctx context.Context, id int64, p *Product) {
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.Int64("product_id", id), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, cacheKey(id), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.Int64("product_id", id), zap.Error(err))
	}
}

// Evict удаляет запись из Redis
func (c *RedisCache) Evict(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.logger.Warn("cache evict failed", zap.Int64("product_id", id), zap.Error(err))
	}
}
