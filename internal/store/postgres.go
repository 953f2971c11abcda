package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/khanrumi/location-picker/internal/db"
	"github.com/khanrumi/location-picker/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS states (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cities (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	state_id   BIGINT NOT NULL REFERENCES states(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, state_id)
);

CREATE TABLE IF NOT EXISTS neighborhoods (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	city_id    BIGINT NOT NULL REFERENCES cities(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, city_id)
);

CREATE TABLE IF NOT EXISTS addresses (
	id              BIGSERIAL PRIMARY KEY,
	address         TEXT NOT NULL,
	neighborhood_id BIGINT NOT NULL REFERENCES neighborhoods(id),
	google_search   TEXT,
	phone           TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cities_state_id ON cities(state_id);
CREATE INDEX IF NOT EXISTS idx_neighborhoods_city_id ON neighborhoods(city_id);
CREATE INDEX IF NOT EXISTS idx_addresses_neighborhood_id ON addresses(neighborhood_id);
`

// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
const (
	upsertStateSQL = `INSERT INTO states (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, created_at, updated_at`

	upsertCitySQL = `INSERT INTO cities (name, state_id) VALUES ($1, $2)
ON CONFLICT (name, state_id) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, state_id, created_at, updated_at`

	upsertNeighborhoodSQL = `INSERT INTO neighborhoods (name, city_id) VALUES ($1, $2)
ON CONFLICT (name, city_id) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, city_id, created_at, updated_at`

	insertAddressSQL = `INSERT INTO addresses (address, neighborhood_id, google_search, phone) VALUES ($1, $2, $3, $4)
RETURNING id, address, neighborhood_id, google_search, phone, created_at, updated_at`
)

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(db.Classify(err), "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.RunInTx(ctx, s.pool, fn)
}

func (s *PostgresStore) ListStates(ctx context.Context) ([]model.State, error) {
	out, err := pgList(ctx, s.pool, statesQuery(), scanState)
	return out, eris.Wrap(err, "postgres: list states")
}

func (s *PostgresStore) ListCities(ctx context.Context) ([]model.City, error) {
	out, err := pgList(ctx, s.pool, citiesQuery(cityFilter{}), scanCity)
	return out, eris.Wrap(err, "postgres: list cities")
}

func (s *PostgresStore) ListCitiesByState(ctx context.Context, stateID int64) ([]model.City, error) {
	out, err := pgList(ctx, s.pool, citiesQuery(cityFilter{StateID: stateID}), scanCity)
	return out, eris.Wrapf(err, "postgres: list cities of state %d", stateID)
}

func (s *PostgresStore) ListSiblingCities(ctx context.Context, stateID, excludeCityID int64) ([]model.City, error) {
	out, err := pgList(ctx, s.pool, citiesQuery(cityFilter{StateID: stateID, ExcludeID: excludeCityID}), scanCity)
	return out, eris.Wrapf(err, "postgres: list siblings of city %d", excludeCityID)
}

func (s *PostgresStore) ListNeighborhoods(ctx context.Context) ([]model.Neighborhood, error) {
	out, err := pgList(ctx, s.pool, neighborhoodsQuery(0), scanNeighborhood)
	return out, eris.Wrap(err, "postgres: list neighborhoods")
}

func (s *PostgresStore) ListNeighborhoodsByCity(ctx context.Context, cityID int64) ([]model.Neighborhood, error) {
	out, err := pgList(ctx, s.pool, neighborhoodsQuery(cityID), scanNeighborhood)
	return out, eris.Wrapf(err, "postgres: list neighborhoods of city %d", cityID)
}

func (s *PostgresStore) UpsertState(ctx context.Context, name string) (*model.State, error) {
	row := db.QuerierFromCtx(ctx, s.pool).QueryRow(ctx, upsertStateSQL, name)
	st, err := scanState(row)
	if err != nil {
		return nil, eris.Wrapf(db.Classify(err), "postgres: upsert state %q", name)
	}
	return &st, nil
}

func (s *PostgresStore) UpsertCity(ctx context.Context, name string, stateID int64) (*model.City, error) {
	row := db.QuerierFromCtx(ctx, s.pool).QueryRow(ctx, upsertCitySQL, name, stateID)
	c, err := scanCity(row)
	if err != nil {
		return nil, eris.Wrapf(db.Classify(err), "postgres: upsert city %q in state %d", name, stateID)
	}
	return &c, nil
}

func (s *PostgresStore) UpsertNeighborhood(ctx context.Context, name string, cityID int64) (*model.Neighborhood, error) {
	row := db.QuerierFromCtx(ctx, s.pool).QueryRow(ctx, upsertNeighborhoodSQL, name, cityID)
	n, err := scanNeighborhood(row)
	if err != nil {
		return nil, eris.Wrapf(db.Classify(err), "postgres: upsert neighborhood %q in city %d", name, cityID)
	}
	return &n, nil
}

func (s *PostgresStore) CreateAddress(ctx context.Context, in model.AddressInput) (*model.Address, error) {
	row := db.QuerierFromCtx(ctx, s.pool).QueryRow(ctx, insertAddressSQL,
		in.Address, in.NeighborhoodID, nilIfEmpty(in.GoogleSearch), in.Phone,
	)
	a, err := scanAddress(row)
	if err != nil {
		return nil, eris.Wrapf(db.Classify(err), "postgres: insert address in neighborhood %d", in.NeighborhoodID)
	}
	return &a, nil
}

// pgList runs a select built by b and scans every row with scan.
func pgList[T any](ctx context.Context, pool db.Pool, b sq.SelectBuilder, scan func(scannable) (T, error)) ([]T, error) {
	query, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, model.Classify(model.ErrStore, err)
	}

	rows, err := db.QuerierFromCtx(ctx, pool).Query(ctx, query, args...)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, db.Classify(err)
		}
		out = append(out, v)
	}
	return out, db.Classify(rows.Err())
}
