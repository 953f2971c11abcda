package location

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/khanrumi/location-picker/internal/model"
	"github.com/khanrumi/location-picker/internal/store"
	"github.com/khanrumi/location-picker/pkg/geocode"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "location.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// stubGeocoder returns canned places and records the queries it saw.
type stubGeocoder struct {
	places  []geocode.Place
	err     error
	queries []string
}

func (g *stubGeocoder) Search(_ context.Context, text string) ([]geocode.Place, error) {
	g.queries = append(g.queries, text)
	return g.places, g.err
}

func place(country, city string) []geocode.Place {
	return []geocode.Place{{Country: country, City: city, Formatted: city + ", " + country}}
}

// countingInvalidator counts invalidation signals.
type countingInvalidator struct {
	n atomic.Int32
}

func (c *countingInvalidator) Invalidate() { c.n.Add(1) }

// flakyStore fails neighborhood upserts and can count list calls.
type flakyStore struct {
	store.Store
	failNeighborhoods bool
	listStates        atomic.Int32
	// When set, ListStates signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

var errInjected = errors.New("injected failure")

func (f *flakyStore) UpsertNeighborhood(ctx context.Context, name string, cityID int64) (*model.Neighborhood, error) {
	if f.failNeighborhoods {
		return nil, model.Classify(model.ErrStore, errInjected)
	}
	return f.Store.UpsertNeighborhood(ctx, name, cityID)
}

func (f *flakyStore) ListStates(ctx context.Context) ([]model.State, error) {
	f.listStates.Add(1)
	if f.release != nil {
		f.started <- struct{}{}
		<-f.release
	}
	return f.Store.ListStates(ctx)
}

func countRows(t *testing.T, st store.Store) (states, cities, hoods int) {
	t.Helper()
	ctx := context.Background()
	s, err := st.ListStates(ctx)
	require.NoError(t, err)
	c, err := st.ListCities(ctx)
	require.NoError(t, err)
	n, err := st.ListNeighborhoods(ctx)
	require.NoError(t, err)
	return len(s), len(c), len(n)
}
