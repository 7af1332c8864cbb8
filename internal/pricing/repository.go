package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Oghenemaro93/QGlide/pkg/common"
	"github.com/Oghenemaro93/QGlide/pkg/logger"
	"github.com/Oghenemaro93/QGlide/pkg/redis"
	"github.com/Oghenemaro93/QGlide/pkg/validation"
)

// Repository loads rate configs from Postgres with a Redis read-through
// cache. Rate configs change rarely but are read on every ride creation and
// settlement, so cache misses fall back to the database and cache errors
// never fail the request.
type Repository struct {
	db       *pgxpool.Pool
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewRepository creates a new pricing repository. cache may be nil, in which
// case every read goes to the database.
func NewRepository(db *pgxpool.Pool, cache *redis.Client, cacheTTL time.Duration) *Repository {
	return &Repository{db: db, cache: cache, cacheTTL: cacheTTL}
}

func rateConfigCacheKey(countryCode string) string {
	return fmt.Sprintf("rate_config:%s", countryCode)
}

// GetActiveByCountry returns the active rate config for the given country
// code. A missing config is a service-level misconfiguration, reported as
// ConfigMissing so callers abort the transition instead of inventing a fare.
func (r *Repository) GetActiveByCountry(ctx context.Context, countryCode string) (*RateConfig, error) {
	if r.cache != nil {
		var cached RateConfig
		err := r.cache.GetJSON(ctx, rateConfigCacheKey(countryCode), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			logger.WithContext(ctx).Warn("rate config cache read failed",
				zap.String("country_code", countryCode),
				zap.Error(err),
			)
		}
	}

	cfg, err := r.fetchActiveByCountry(ctx, countryCode)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SetJSON(ctx, rateConfigCacheKey(countryCode), cfg, r.cacheTTL); err != nil {
			logger.WithContext(ctx).Warn("rate config cache write failed",
				zap.String("country_code", countryCode),
				zap.Error(err),
			)
		}
	}

	return cfg, nil
}

func (r *Repository) fetchActiveByCountry(ctx context.Context, countryCode string) (*RateConfig, error) {
	query := `
		SELECT id, country_code, timezone, base_rate,
		       economy_kilometer_rate, suv_kilometer_rate, luxury_kilometer_rate,
		       time_based_rate, duration_threshold_seconds,
		       peak_hour_rate, package_delivery_rate, minimum_fare,
		       peak_windows, is_active, created_at, updated_at
		FROM rate_configs
		WHERE country_code = $1 AND is_active = true
		ORDER BY updated_at DESC
		LIMIT 1
	`

	cfg := &RateConfig{}
	var peakWindowsJSON []byte

	err := r.db.QueryRow(ctx, query, countryCode).Scan(
		&cfg.ID, &cfg.CountryCode, &cfg.Timezone, &cfg.BaseRate,
		&cfg.EconomyKilometerRate, &cfg.SUVKilometerRate, &cfg.LuxuryKilometerRate,
		&cfg.TimeBasedRate, &cfg.DurationThresholdSeconds,
		&cfg.PeakHourRate, &cfg.PackageDeliveryRate, &cfg.MinimumFare,
		&peakWindowsJSON, &cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewConfigMissingError(fmt.Sprintf("no active rate config for country %s", countryCode))
		}
		return nil, fmt.Errorf("failed to get rate config: %w", err)
	}

	if len(peakWindowsJSON) > 0 {
		if err := json.Unmarshal(peakWindowsJSON, &cfg.PeakWindows); err != nil {
			return nil, fmt.Errorf("failed to parse peak windows: %w", err)
		}
	}

	if err := validation.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("rate config for country %s is invalid: %w", countryCode, err)
	}

	return cfg, nil
}
