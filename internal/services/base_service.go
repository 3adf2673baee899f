package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"equipment-register/internal/repositories"
	"equipment-register/pkg/constants"
	"equipment-register/pkg/eventbus"
)

// BaseService - общие зависимости сервисов оборудования: кеш сводки, шина
// событий и часы. Кеш и шина необязательны.
type BaseService struct {
	cache  repositories.CacheRepositoryInterface
	bus    *eventbus.Bus
	logger *zap.Logger
	now    func() time.Time
}

func NewBaseService(cache repositories.CacheRepositoryInterface, bus *eventbus.Bus, logger *zap.Logger, now func() time.Time) *BaseService {
	if now == nil {
		now = time.Now
	}
	return &BaseService{cache: cache, bus: bus, logger: logger, now: now}
}

// Now - текущий момент в UTC.
func (s *BaseService) Now() time.Time {
	return s.now().UTC()
}

// CacheGet получает данные из кэша
func (s *BaseService) CacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		s.logger.Warn("Повреждены данные в кэше", zap.String("key", key), zap.Error(err))
		return false
	}
	s.logger.Debug("Данные получены из кэша", zap.String("key", key))
	return true
}

// CacheSet сохраняет данные в кэш
func (s *BaseService) CacheSet(ctx context.Context, key string, data interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	serialized, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn("Не удалось сериализовать данные для кэша", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, serialized, ttl); err != nil {
		s.logger.Warn("Не удалось записать в кэш", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateSummary переводит филиал на новое поколение данных. Вызывается
// после коммита каждой мутации, до ответа клиенту. Сводка, посчитанная по
// срезу до мутации, записывается под старым поколением и больше не читается.
func (s *BaseService) InvalidateSummary(ctx context.Context, branchID string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, summaryGenerationKey(branchID)); err != nil {
		s.logger.Warn("Не удалось сбросить кэш сводки", zap.String("branch_id", branchID), zap.Error(err))
	}
}

// SummaryGeneration - текущее поколение данных филиала. Читается до среза
// данных. ok=false, если кеш недоступен и сводку кешировать нельзя.
func (s *BaseService) SummaryGeneration(ctx context.Context, branchID string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	raw, err := s.cache.Get(ctx, summaryGenerationKey(branchID))
	if errors.Is(err, repositories.ErrCacheMiss) {
		return 0, true
	}
	if err != nil {
		s.logger.Warn("Не удалось прочитать поколение сводки", zap.String("branch_id", branchID), zap.Error(err))
		return 0, false
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("Повреждено поколение сводки", zap.String("branch_id", branchID), zap.String("value", raw))
		return 0, false
	}
	return gen, true
}

// Publish отправляет событие в шину, если она подключена.
func (s *BaseService) Publish(ctx context.Context, event eventbus.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event)
}

func summaryCacheKey(branchID string, generation int64) string {
	return fmt.Sprintf(constants.CacheKeyEquipmentSummary, branchID, generation)
}

func summaryGenerationKey(branchID string) string {
	return fmt.Sprintf(constants.CacheKeyEquipmentSummaryGen, branchID)
}
