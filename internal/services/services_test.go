package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"equipment-register/internal/alerting"
	"equipment-register/internal/compliance"
	"equipment-register/internal/repositories"
	"equipment-register/internal/repositories/memory"
	"equipment-register/pkg/eventbus"
)

// memoryCache - кеш для тестов с тем же контрактом, что и Redis-реализация.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	default:
		return errors.New("unsupported cache value")
	}
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if raw, ok := c.data[key]; ok {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, err
		}
		n = v
	}
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	repo      *memory.EquipmentRepository
	cache     *memoryCache
	bus       *eventbus.Bus
	clock     *clock
	equipment EquipmentServiceInterface
	downtime  DowntimeServiceInterface
	alerts    EquipmentAlertsServiceInterface
}

func newFixture(mode compliance.Mode) *fixture {
	logger := zap.NewNop()
	f := &fixture{
		repo:  memory.NewEquipmentRepository(),
		cache: newMemoryCache(),
		bus:   eventbus.New(logger),
		clock: &clock{now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)},
	}
	policy := compliance.DefaultPolicy()
	policy.Mode = mode

	base := NewBaseService(f.cache, f.bus, logger, f.clock.Now)
	f.equipment = NewEquipmentService(base, f.repo, compliance.NewGate(policy))
	f.downtime = NewDowntimeService(base, f.repo)
	f.alerts = NewEquipmentAlertsService(base, f.repo, alerting.NewProjector(alerting.DefaultPolicy()), time.Minute)
	return f
}
