package location

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/khanrumi/location-picker/internal/model"
	"github.com/khanrumi/location-picker/internal/store"
	"github.com/khanrumi/location-picker/pkg/geocode"
)

// Normalizer turns a free-text place query into stored location rows.
//
// The geocoded country is stored as a State and the city as a City in it.
// Each other city of that state is then cross-linked with the new one by two
// Neighborhood rows: one named after the new city under the sibling, and one
// named after the sibling under the new city.
type Normalizer struct {
	store    store.Store
	geocoder geocode.Client
	inv      Invalidator
}

// NewNormalizer creates a Normalizer. inv may be nil.
func NewNormalizer(st store.Store, gc geocode.Client, inv Invalidator) *Normalizer {
	if inv == nil {
		inv = noopInvalidator{}
	}
	return &Normalizer{store: st, geocoder: gc, inv: inv}
}

// Resolve geocodes query and records the best match. Nothing is written when
// the query is blank, the provider fails or finds nothing, or the match has
// no country or city. All writes share one transaction.
func (n *Normalizer) Resolve(ctx context.Context, query string) Result[*model.LocationData] {
	query = strings.TrimSpace(query)
	if query == "" {
		return fail[*model.LocationData]("resolve", model.NewValidationError("query", "Incomplete location data"))
	}

	places, err := n.geocoder.Search(ctx, query)
	if err != nil {
		return fail[*model.LocationData]("resolve", model.Classify(model.ErrProvider, eris.Wrapf(err, "location: geocode %q", query)))
	}
	if len(places) == 0 {
		return fail[*model.LocationData]("resolve", eris.Wrapf(model.ErrNotFound, "location: geocode %q", query))
	}

	top := places[0]
	country := model.NormalizeName(top.Country)
	cityName := model.NormalizeName(top.City)
	if country == "" || cityName == "" {
		return fail[*model.LocationData]("resolve", eris.Wrapf(model.ErrIncompleteData,
			"location: match %q has country=%q city=%q", top.Formatted, top.Country, top.City))
	}

	data := &model.LocationData{Neighborhoods: make([]string, 0)}
	err = n.store.RunInTx(ctx, func(ctx context.Context) error {
		state, err := n.store.UpsertState(ctx, country)
		if err != nil {
			return err
		}
		city, err := n.store.UpsertCity(ctx, cityName, state.ID)
		if err != nil {
			return err
		}
		siblings, err := n.store.ListSiblingCities(ctx, state.ID, city.ID)
		if err != nil {
			return err
		}
		for _, sib := range siblings {
			if _, err := n.store.UpsertNeighborhood(ctx, city.Name, sib.ID); err != nil {
				return err
			}
			if _, err := n.store.UpsertNeighborhood(ctx, sib.Name, city.ID); err != nil {
				return err
			}
			data.Neighborhoods = append(data.Neighborhoods, sib.Name)
		}
		data.State = state.Name
		data.City = city.Name
		return nil
	})
	if err != nil {
		return fail[*model.LocationData]("resolve", eris.Wrapf(err, "location: record %q", query))
	}

	n.inv.Invalidate()
	zap.L().Info("location: resolved query",
		zap.String("query", query),
		zap.String("state", data.State),
		zap.String("city", data.City),
		zap.Int("cross_links", len(data.Neighborhoods)),
	)
	return ok(data)
}
