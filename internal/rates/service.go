package rates

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/digitalogic/catalog/internal/audit"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	CurrencyUSD = "usd"
	CurrencyCNY = "cny"
)

// Canonical settings keys. The options_-prefixed aliases come from an older
// deployment that stored every key twice; they are kept readable for external
// consumers and migrated forward on first read.
const (
	keyDollarPrice = "dollar_price"
	keyYuanPrice   = "yuan_price"
	keyUpdateDate  = "update_date"

	legacyAliasPrefix = "options_"

	cacheKeyPrefix = "digitalogic:setting:"
	cacheTTL       = 5 * time.Minute
)

type RatesOutput struct {
	DollarPrice float64 `json:"dollar_price"`
	YuanPrice   float64 `json:"yuan_price"`
	UpdateDate  string  `json:"update_date"`
}

type UpdateInput struct {
	DollarPrice *float64 `json:"dollar_price"`
	YuanPrice   *float64 `json:"yuan_price"`
	Recalculate bool     `json:"recalculate"`
}

type Service interface {
	// Rate returns the exchange rate for a currency, 0 when unset or unknown.
	// It never fails: storage errors degrade to the zero default.
	Rate(ctx context.Context, currency string) float64

	Rates(ctx context.Context) RatesOutput

	// Set updates one or both rates, stamps the update date and audits the
	// change.
	Set(ctx context.Context, input UpdateInput) (*RatesOutput, *rest.ApiErr)

	UpdateDate(ctx context.Context) string
}

type svc struct {
	repo   SettingsRepository
	cache  *redis.Client
	audit  audit.Service
	logger *zap.Logger
}

func NewService(repo SettingsRepository, cache *redis.Client, auditService audit.Service, logger *zap.Logger) Service {
	return &svc{
		repo:   repo,
		cache:  cache,
		audit:  auditService,
		logger: logger,
	}
}

func rateKey(currency string) string {
	switch currency {
	case CurrencyUSD:
		return keyDollarPrice
	case CurrencyCNY:
		return keyYuanPrice
	default:
		return ""
	}
}

func (s *svc) Rate(ctx context.Context, currency string) float64 {
	key := rateKey(currency)
	if key == "" {
		return 0
	}

	value, ok := s.getSetting(ctx, key)
	if !ok {
		return 0
	}

	rate, err := strconv.ParseFloat(value, 64)
	if err != nil {
		s.logger.Warn("stored rate is not numeric", zap.String("key", key), zap.String("value", value))
		return 0
	}
	return rate
}

func (s *svc) Rates(ctx context.Context) RatesOutput {
	return RatesOutput{
		DollarPrice: s.Rate(ctx, CurrencyUSD),
		YuanPrice:   s.Rate(ctx, CurrencyCNY),
		UpdateDate:  s.UpdateDate(ctx),
	}
}

func (s *svc) UpdateDate(ctx context.Context) string {
	value, ok := s.getSetting(ctx, keyUpdateDate)
	if !ok || value == "" {
		return time.Now().Format("2006-01-02")
	}
	return value
}

func (s *svc) Set(ctx context.Context, input UpdateInput) (*RatesOutput, *rest.ApiErr) {
	if input.DollarPrice == nil && input.YuanPrice == nil {
		return nil, rest.NewBadRequestError("at least one rate is required")
	}

	// Validate everything before the first write so a rejected request
	// mutates nothing.
	if input.DollarPrice != nil && *input.DollarPrice < 0 {
		return nil, rest.NewBadRequestError("dollar rate cannot be negative")
	}
	if input.YuanPrice != nil && *input.YuanPrice < 0 {
		return nil, rest.NewBadRequestError("yuan rate cannot be negative")
	}

	if input.DollarPrice != nil {
		if apiErr := s.setRate(ctx, keyDollarPrice, *input.DollarPrice); apiErr != nil {
			return nil, apiErr
		}
	}
	if input.YuanPrice != nil {
		if apiErr := s.setRate(ctx, keyYuanPrice, *input.YuanPrice); apiErr != nil {
			return nil, apiErr
		}
	}

	today := time.Now().Format("2006-01-02")
	s.writeSetting(ctx, keyUpdateDate, today)

	out := s.Rates(ctx)
	return &out, nil
}

func (s *svc) setRate(ctx context.Context, key string, value float64) *rest.ApiErr {
	formatted := strconv.FormatFloat(value, 'f', -1, 64)

	if err := s.repo.Set(ctx, key, formatted); err != nil {
		s.logger.Error("failed to store rate", zap.String("key", key), zap.Error(err))
		return rest.NewInternalServerError("failed to store exchange rate")
	}

	// Mirror to the legacy alias so older readers stay in sync. Alias write
	// failures are non-fatal; the canonical key is authoritative.
	if err := s.repo.Set(ctx, legacyAliasPrefix+key, formatted); err != nil {
		s.logger.Warn("failed to mirror rate to legacy alias", zap.String("key", key), zap.Error(err))
	}

	s.cacheSet(ctx, key, formatted)

	s.audit.Log(ctx, audit.ActionUpdateCurrency, audit.ObjectOption, 0, nil,
		fmt.Sprintf("%s=%s", key, formatted))

	return nil
}

func (s *svc) writeSetting(ctx context.Context, key, value string) {
	if err := s.repo.Set(ctx, key, value); err != nil {
		s.logger.Error("failed to store setting", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.repo.Set(ctx, legacyAliasPrefix+key, value); err != nil {
		s.logger.Warn("failed to mirror setting to legacy alias", zap.String("key", key), zap.Error(err))
	}
	s.cacheSet(ctx, key, value)
}

// getSetting reads the canonical key, consulting the cache first. On a miss
// it falls back to the legacy alias exactly once, migrating the value to the
// canonical key so the fallback never runs again for that key.
func (s *svc) getSetting(ctx context.Context, key string) (string, bool) {
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, true
	}

	value, err := s.repo.Get(ctx, key)
	if err == nil {
		s.cacheSet(ctx, key, value)
		return value, true
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn("failed to read setting", zap.String("key", key), zap.Error(err))
		return "", false
	}

	legacy, err := s.repo.Get(ctx, legacyAliasPrefix+key)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("failed to read legacy setting", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}

	if err := s.repo.Set(ctx, key, legacy); err != nil {
		s.logger.Warn("failed to migrate legacy setting", zap.String("key", key), zap.Error(err))
	}
	s.cacheSet(ctx, key, legacy)
	return legacy, true
}

func (s *svc) cacheGet(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, err := s.cache.Get(ctx, cacheKeyPrefix+key).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *svc) cacheSet(ctx context.Context, key, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+key, value, cacheTTL).Err(); err != nil {
		s.logger.Debug("failed to cache setting", zap.String("key", key), zap.Error(err))
	}
}
