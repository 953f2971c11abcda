package location

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/khanrumi/location-picker/internal/model"
	"github.com/khanrumi/location-picker/internal/store"
)

// Invalidator is told when the stored hierarchy has changed so that derived
// views can be dropped.
type Invalidator interface {
	Invalidate()
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate() {}

// Service exposes the location hierarchy and address operations.
type Service struct {
	store     store.Store
	snapshots *SnapshotCache
	inv       Invalidator
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSnapshotCache shares an existing snapshot cache with the service.
func WithSnapshotCache(c *SnapshotCache) ServiceOption {
	return func(s *Service) {
		s.snapshots = c
	}
}

// WithInvalidator replaces the signal fired after every successful write.
// By default the service invalidates its own snapshot cache.
func WithInvalidator(inv Invalidator) ServiceOption {
	return func(s *Service) {
		s.inv = inv
	}
}

// NewService creates a Service backed by st.
func NewService(st store.Store, opts ...ServiceOption) *Service {
	s := &Service{store: st}
	for _, opt := range opts {
		opt(s)
	}
	if s.snapshots == nil {
		s.snapshots = NewSnapshotCache(st)
	}
	if s.inv == nil {
		s.inv = s.snapshots
	}
	return s
}

// Invalidator returns the signal the service fires after writes, for
// sharing with a Normalizer.
func (s *Service) Invalidator() Invalidator { return s.inv }

// ListStates returns all states ordered by name.
func (s *Service) ListStates(ctx context.Context) Result[[]model.State] {
	states, err := s.store.ListStates(ctx)
	if err != nil {
		return fail[[]model.State]("list states", err)
	}
	return ok(states)
}

// ListCitiesByState returns the cities of one state ordered by name.
func (s *Service) ListCitiesByState(ctx context.Context, stateID int64) Result[[]model.City] {
	cities, err := s.store.ListCitiesByState(ctx, stateID)
	if err != nil {
		return fail[[]model.City]("list cities", err)
	}
	return ok(cities)
}

// ListNeighborhoodsByCity returns the neighborhoods of one city ordered by name.
func (s *Service) ListNeighborhoodsByCity(ctx context.Context, cityID int64) Result[[]model.Neighborhood] {
	hoods, err := s.store.ListNeighborhoodsByCity(ctx, cityID)
	if err != nil {
		return fail[[]model.Neighborhood]("list neighborhoods", err)
	}
	return ok(hoods)
}

// AddState returns the state with the given name, creating it if needed.
func (s *Service) AddState(ctx context.Context, name string) Result[*model.State] {
	name = model.NormalizeName(name)
	if name == "" {
		return fail[*model.State]("add state", model.NewValidationError("name", "State name cannot be empty"))
	}
	st, err := s.store.UpsertState(ctx, name)
	if err != nil {
		return fail[*model.State]("add state", err)
	}
	s.inv.Invalidate()
	return ok(st)
}

// AddCity returns the city with the given name in stateID, creating it if
// needed. An unknown stateID fails with model.ErrReferential.
func (s *Service) AddCity(ctx context.Context, name string, stateID int64) Result[*model.City] {
	name = model.NormalizeName(name)
	if name == "" {
		return fail[*model.City]("add city", model.NewValidationError("name", "City name cannot be empty"))
	}
	c, err := s.store.UpsertCity(ctx, name, stateID)
	if err != nil {
		return fail[*model.City]("add city", err)
	}
	s.inv.Invalidate()
	return ok(c)
}

// AddNeighborhood returns the neighborhood with the given name in cityID,
// creating it if needed.
func (s *Service) AddNeighborhood(ctx context.Context, name string, cityID int64) Result[*model.Neighborhood] {
	name = model.NormalizeName(name)
	if name == "" {
		return fail[*model.Neighborhood]("add neighborhood", model.NewValidationError("name", "Neighborhood name cannot be empty"))
	}
	n, err := s.store.UpsertNeighborhood(ctx, name, cityID)
	if err != nil {
		return fail[*model.Neighborhood]("add neighborhood", err)
	}
	s.inv.Invalidate()
	return ok(n)
}

// SaveAddress inserts a new address. Identical payloads create separate rows.
func (s *Service) SaveAddress(ctx context.Context, in model.AddressInput) Result[*model.Address] {
	a, err := s.store.CreateAddress(ctx, in)
	if err != nil {
		return fail[*model.Address]("save address", err)
	}
	s.inv.Invalidate()
	return ok(a)
}

// Snapshot returns every state, city and neighborhood, each ordered by name.
func (s *Service) Snapshot(ctx context.Context) Result[*model.Snapshot] {
	snap, err := s.snapshots.Get(ctx)
	if err != nil {
		return fail[*model.Snapshot]("snapshot", eris.Wrap(err, "location: load snapshot"))
	}
	return ok(snap)
}
