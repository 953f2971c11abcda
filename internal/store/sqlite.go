package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rotisserie/eris"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/khanrumi/location-picker/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
//
// The handle is limited to one open connection: pragmas such as
// foreign_keys are per connection, and writers serialize anyway.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path with WAL mode and
// foreign key enforcement.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS states (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS cities (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	state_id   INTEGER NOT NULL REFERENCES states(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE (name, state_id)
);

CREATE TABLE IF NOT EXISTS neighborhoods (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	city_id    INTEGER NOT NULL REFERENCES cities(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE (name, city_id)
);

CREATE TABLE IF NOT EXISTS addresses (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	address         TEXT NOT NULL,
	neighborhood_id INTEGER NOT NULL REFERENCES neighborhoods(id),
	google_search   TEXT,
	phone           TEXT NOT NULL,
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cities_state_id ON cities(state_id);
CREATE INDEX IF NOT EXISTS idx_neighborhoods_city_id ON neighborhoods(city_id);
CREATE INDEX IF NOT EXISTS idx_addresses_neighborhood_id ON addresses(neighborhood_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(classifySQLite(err), "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// sqlQuerier is implemented by both *sql.DB and *sql.Tx.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqliteTxKey struct{}

func (s *SQLiteStore) querier(ctx context.Context) sqlQuerier {
	if tx, ok := ctx.Value(sqliteTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

func (s *SQLiteStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(sqliteTxKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(classifySQLite(err), "sqlite: begin tx")
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, sqliteTxKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return eris.Wrapf(err, "sqlite: rollback failed: %v", rbErr)
		}
		return err
	}
	return eris.Wrap(classifySQLite(tx.Commit()), "sqlite: commit tx")
}

func (s *SQLiteStore) ListStates(ctx context.Context) ([]model.State, error) {
	out, err := sqliteList(ctx, s.querier(ctx), statesQuery(), scanState)
	return out, eris.Wrap(err, "sqlite: list states")
}

func (s *SQLiteStore) ListCities(ctx context.Context) ([]model.City, error) {
	out, err := sqliteList(ctx, s.querier(ctx), citiesQuery(cityFilter{}), scanCity)
	return out, eris.Wrap(err, "sqlite: list cities")
}

func (s *SQLiteStore) ListCitiesByState(ctx context.Context, stateID int64) ([]model.City, error) {
	out, err := sqliteList(ctx, s.querier(ctx), citiesQuery(cityFilter{StateID: stateID}), scanCity)
	return out, eris.Wrapf(err, "sqlite: list cities of state %d", stateID)
}

func (s *SQLiteStore) ListSiblingCities(ctx context.Context, stateID, excludeCityID int64) ([]model.City, error) {
	out, err := sqliteList(ctx, s.querier(ctx), citiesQuery(cityFilter{StateID: stateID, ExcludeID: excludeCityID}), scanCity)
	return out, eris.Wrapf(err, "sqlite: list siblings of city %d", excludeCityID)
}

func (s *SQLiteStore) ListNeighborhoods(ctx context.Context) ([]model.Neighborhood, error) {
	out, err := sqliteList(ctx, s.querier(ctx), neighborhoodsQuery(0), scanNeighborhood)
	return out, eris.Wrap(err, "sqlite: list neighborhoods")
}

func (s *SQLiteStore) ListNeighborhoodsByCity(ctx context.Context, cityID int64) ([]model.Neighborhood, error) {
	out, err := sqliteList(ctx, s.querier(ctx), neighborhoodsQuery(cityID), scanNeighborhood)
	return out, eris.Wrapf(err, "sqlite: list neighborhoods of city %d", cityID)
}

// SQLite upserts insert-or-ignore and then read the row back inside one
// transaction; the read is what returns the existing row on conflict.

func (s *SQLiteStore) UpsertState(ctx context.Context, name string) (*model.State, error) {
	var st model.State
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		q := s.querier(ctx)
		now := time.Now().UTC()
		if _, err := q.ExecContext(ctx,
			`INSERT INTO states (name, created_at, updated_at) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING`,
			name, now, now,
		); err != nil {
			return err
		}
		var err error
		st, err = scanState(q.QueryRowContext(ctx,
			`SELECT id, name, created_at, updated_at FROM states WHERE name = ?`, name))
		return err
	})
	if err != nil {
		return nil, eris.Wrapf(classifySQLite(err), "sqlite: upsert state %q", name)
	}
	return &st, nil
}

func (s *SQLiteStore) UpsertCity(ctx context.Context, name string, stateID int64) (*model.City, error) {
	var c model.City
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		q := s.querier(ctx)
		now := time.Now().UTC()
		if _, err := q.ExecContext(ctx,
			`INSERT INTO cities (name, state_id, created_at, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT (name, state_id) DO NOTHING`,
			name, stateID, now, now,
		); err != nil {
			return err
		}
		var err error
		c, err = scanCity(q.QueryRowContext(ctx,
			`SELECT id, name, state_id, created_at, updated_at FROM cities WHERE name = ? AND state_id = ?`, name, stateID))
		return err
	})
	if err != nil {
		return nil, eris.Wrapf(classifySQLite(err), "sqlite: upsert city %q in state %d", name, stateID)
	}
	return &c, nil
}

func (s *SQLiteStore) UpsertNeighborhood(ctx context.Context, name string, cityID int64) (*model.Neighborhood, error) {
	var n model.Neighborhood
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		q := s.querier(ctx)
		now := time.Now().UTC()
		if _, err := q.ExecContext(ctx,
			`INSERT INTO neighborhoods (name, city_id, created_at, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT (name, city_id) DO NOTHING`,
			name, cityID, now, now,
		); err != nil {
			return err
		}
		var err error
		n, err = scanNeighborhood(q.QueryRowContext(ctx,
			`SELECT id, name, city_id, created_at, updated_at FROM neighborhoods WHERE name = ? AND city_id = ?`, name, cityID))
		return err
	})
	if err != nil {
		return nil, eris.Wrapf(classifySQLite(err), "sqlite: upsert neighborhood %q in city %d", name, cityID)
	}
	return &n, nil
}

func (s *SQLiteStore) CreateAddress(ctx context.Context, in model.AddressInput) (*model.Address, error) {
	now := time.Now().UTC()
	res, err := s.querier(ctx).ExecContext(ctx,
		`INSERT INTO addresses (address, neighborhood_id, google_search, phone, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		in.Address, in.NeighborhoodID, nilIfEmpty(in.GoogleSearch), in.Phone, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(classifySQLite(err), "sqlite: insert address in neighborhood %d", in.NeighborhoodID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(classifySQLite(err), "sqlite: last insert id")
	}

	a := &model.Address{
		ID:             id,
		Address:        in.Address,
		NeighborhoodID: in.NeighborhoodID,
		Phone:          in.Phone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.GoogleSearch != "" {
		gs := in.GoogleSearch
		a.GoogleSearch = &gs
	}
	return a, nil
}

// helpers

func sqliteList[T any](ctx context.Context, q sqlQuerier, b sq.SelectBuilder, scan func(scannable) (T, error)) ([]T, error) {
	query, args, err := b.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, model.Classify(model.ErrStore, err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifySQLite(err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, classifySQLite(err)
		}
		out = append(out, v)
	}
	return out, classifySQLite(rows.Err())
}

// classifySQLite tags a driver error with its model error kind.
func classifySQLite(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		if se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY || strings.Contains(se.Error(), "FOREIGN KEY constraint failed") {
			return model.Classify(model.ErrReferential, err)
		}
	}
	return model.Classify(model.ErrStore, err)
}
