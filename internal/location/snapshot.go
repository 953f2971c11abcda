package location

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/khanrumi/location-picker/internal/model"
	"github.com/khanrumi/location-picker/internal/store"
)

// SnapshotCache keeps the last loaded Snapshot until it is invalidated.
// Concurrent misses share a single load.
type SnapshotCache struct {
	store store.Store
	group singleflight.Group

	mu   sync.Mutex
	snap *model.Snapshot
	gen  uint64
}

// NewSnapshotCache creates an empty cache over st.
func NewSnapshotCache(st store.Store) *SnapshotCache {
	return &SnapshotCache{store: st}
}

// Get returns the cached snapshot, loading it from the store on a miss.
// Callers must not modify the returned lists.
func (c *SnapshotCache) Get(ctx context.Context) (*model.Snapshot, error) {
	c.mu.Lock()
	if c.snap != nil {
		snap := c.snap
		c.mu.Unlock()
		return snap, nil
	}
	gen := c.gen
	c.mu.Unlock()

	// The shared load outlives any one caller; each caller stops waiting
	// when its own ctx ends.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("snapshot", func() (any, error) {
		snap, err := loadSnapshot(loadCtx, c.store)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// A write that landed during the load makes this result stale.
		if c.gen == gen {
			c.snap = snap
		}
		c.mu.Unlock()
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Snapshot), nil
	}
}

// Invalidate drops the cached snapshot.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.gen++
	c.mu.Unlock()
	c.group.Forget("snapshot")
}

func loadSnapshot(ctx context.Context, st store.Store) (*model.Snapshot, error) {
	var snap model.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Cities, err = st.ListCities(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.States, err = st.ListStates(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Neighborhoods, err = st.ListNeighborhoods(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
