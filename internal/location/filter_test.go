package location

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khanrumi/location-picker/internal/model"
)

func TestCitiesOf(t *testing.T) {
	cities := []model.City{
		{ID: 1, Name: "Belem", StateID: 1},
		{ID: 2, Name: "Cordoba", StateID: 2},
		{ID: 3, Name: "Rio", StateID: 1},
	}

	tests := []struct {
		name    string
		stateID int64
		want    []int64
	}{
		{"no selection", 0, []int64{1, 2, 3}},
		{"brazil", 1, []int64{1, 3}},
		{"argentina", 2, []int64{2}},
		{"unknown", 9, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CitiesOf(cities, tt.stateID)
			ids := make([]int64, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestNeighborhoodsOf(t *testing.T) {
	hoods := []model.Neighborhood{
		{ID: 1, Name: "Copacabana", CityID: 3},
		{ID: 2, Name: "Ipanema", CityID: 3},
		{ID: 3, Name: "Nazare", CityID: 1},
	}

	assert.Len(t, NeighborhoodsOf(hoods, 0), 3)
	assert.Len(t, NeighborhoodsOf(hoods, 3), 2)
	assert.Equal(t, "Nazare", NeighborhoodsOf(hoods, 1)[0].Name)

	none := NeighborhoodsOf(hoods, 42)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
