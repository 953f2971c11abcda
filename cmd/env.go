package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/khanrumi/location-picker/internal/config"
	"github.com/khanrumi/location-picker/internal/location"
	"github.com/khanrumi/location-picker/internal/resilience"
	"github.com/khanrumi/location-picker/internal/store"
	"github.com/khanrumi/location-picker/pkg/geocode"
)

const defaultSQLitePath = "location-picker.db"

// appEnv holds the store and services shared by the commands.
type appEnv struct {
	Store      store.Store
	Service    *location.Service
	Normalizer *location.Normalizer // nil unless geocoding was requested
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates cfg for mode, opens and migrates the store, and builds
// the services. mode is one of the config.Validate modes; "geocode" and
// "serve" also build the normalizer. Callers should defer env.Close().
func initEnv(ctx context.Context, c *config.Config, mode string) (*appEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx, c.Store)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	env := &appEnv{Store: st, Service: location.NewService(st)}
	if mode == "geocode" || mode == "serve" {
		env.Normalizer = location.NewNormalizer(st, initGeocoder(c.Geocode), env.Service.Invalidator())
	}
	return env, nil
}

func initStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "sqlite":
		dsn := sc.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, sc.DatabaseURL, &store.PoolConfig{
			MaxConns: sc.MaxConns,
			MinConns: sc.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
}

func initGeocoder(gc config.GeocodeConfig) geocode.Client {
	retry := resilience.DefaultRetryConfig()
	if gc.MaxAttempts > 0 {
		retry.MaxAttempts = gc.MaxAttempts
	}
	retry.OnRetry = resilience.RetryLogger("geoapify")

	opts := []geocode.Option{
		geocode.WithTimeout(gc.Timeout()),
		geocode.WithRetry(retry),
		geocode.WithRateLimit(gc.RateLimit),
		geocode.WithLimit(gc.Limit),
	}
	if gc.BaseURL != "" {
		opts = append(opts, geocode.WithBaseURL(gc.BaseURL))
	}
	if gc.Lang != "" {
		opts = append(opts, geocode.WithLang(gc.Lang))
	}

	zap.L().Debug("geocoder configured",
		zap.String("base_url", gc.BaseURL),
		zap.Float64("rate_limit", gc.RateLimit),
		zap.Int("max_attempts", retry.MaxAttempts),
	)
	return geocode.NewClient(gc.APIKey, opts...)
}
