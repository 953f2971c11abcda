package location

import "github.com/khanrumi/location-picker/internal/model"

// CitiesOf returns the cities that belong to stateID, keeping their order.
// A zero stateID means no state is selected and returns all cities.
func CitiesOf(cities []model.City, stateID int64) []model.City {
	if stateID == 0 {
		return cities
	}
	out := make([]model.City, 0)
	for _, c := range cities {
		if c.StateID == stateID {
			out = append(out, c)
		}
	}
	return out
}

// NeighborhoodsOf returns the neighborhoods that belong to cityID.
// A zero cityID returns all neighborhoods.
func NeighborhoodsOf(neighborhoods []model.Neighborhood, cityID int64) []model.Neighborhood {
	if cityID == 0 {
		return neighborhoods
	}
	out := make([]model.Neighborhood, 0)
	for _, n := range neighborhoods {
		if n.CityID == cityID {
			out = append(out, n)
		}
	}
	return out
}
