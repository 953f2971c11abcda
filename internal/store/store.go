// Package store persists the location hierarchy (states, cities,
// neighborhoods) and saved addresses.
package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/khanrumi/location-picker/internal/model"
)

// Store defines the persistence interface for locations and addresses.
//
// Upserts insert a row when none matches the unique key and otherwise return
// the existing row unchanged. Errors are tagged with model.ErrReferential for
// foreign key violations and model.ErrStore for everything else.
type Store interface {
	// Reads, each ordered by name ascending.
	ListStates(ctx context.Context) ([]model.State, error)
	ListCities(ctx context.Context) ([]model.City, error)
	ListCitiesByState(ctx context.Context, stateID int64) ([]model.City, error)
	ListSiblingCities(ctx context.Context, stateID, excludeCityID int64) ([]model.City, error)
	ListNeighborhoods(ctx context.Context) ([]model.Neighborhood, error)
	ListNeighborhoodsByCity(ctx context.Context, cityID int64) ([]model.Neighborhood, error)

	// Upserts
	UpsertState(ctx context.Context, name string) (*model.State, error)
	UpsertCity(ctx context.Context, name string, stateID int64) (*model.City, error)
	UpsertNeighborhood(ctx context.Context, name string, cityID int64) (*model.Neighborhood, error)

	// Addresses
	CreateAddress(ctx context.Context, in model.AddressInput) (*model.Address, error)

	// RunInTx runs fn in a single transaction. Store calls made with the
	// context passed to fn join that transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

var (
	stateColumns        = []string{"id", "name", "created_at", "updated_at"}
	cityColumns         = []string{"id", "name", "state_id", "created_at", "updated_at"}
	neighborhoodColumns = []string{"id", "name", "city_id", "created_at", "updated_at"}
	addressColumns      = []string{"id", "address", "neighborhood_id", "google_search", "phone", "created_at", "updated_at"}
)

// cityFilter narrows a city listing. Zero values mean "no filter".
type cityFilter struct {
	StateID   int64
	ExcludeID int64
}

func statesQuery() sq.SelectBuilder {
	return sq.Select(stateColumns...).From("states").OrderBy("name ASC", "id ASC")
}

func citiesQuery(f cityFilter) sq.SelectBuilder {
	b := sq.Select(cityColumns...).From("cities")
	if f.StateID != 0 {
		b = b.Where(sq.Eq{"state_id": f.StateID})
	}
	if f.ExcludeID != 0 {
		b = b.Where(sq.NotEq{"id": f.ExcludeID})
	}
	return b.OrderBy("name ASC", "id ASC")
}

func neighborhoodsQuery(cityID int64) sq.SelectBuilder {
	b := sq.Select(neighborhoodColumns...).From("neighborhoods")
	if cityID != 0 {
		b = b.Where(sq.Eq{"city_id": cityID})
	}
	return b.OrderBy("name ASC", "id ASC")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanState(row scannable) (model.State, error) {
	var st model.State
	err := row.Scan(&st.ID, &st.Name, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

func scanCity(row scannable) (model.City, error) {
	var c model.City
	err := row.Scan(&c.ID, &c.Name, &c.StateID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanNeighborhood(row scannable) (model.Neighborhood, error) {
	var n model.Neighborhood
	err := row.Scan(&n.ID, &n.Name, &n.CityID, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func scanAddress(row scannable) (model.Address, error) {
	var a model.Address
	err := row.Scan(&a.ID, &a.Address, &a.NeighborhoodID, &a.GoogleSearch, &a.Phone, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// nilIfEmpty returns nil for empty strings so they are stored as NULL.
func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
