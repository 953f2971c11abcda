package model

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// State is the root of the location hierarchy. Names are globally unique.
type State struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// City belongs to a State. Names are unique per state.
type City struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StateID   int64     `json:"stateId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Neighborhood belongs to a City. Names are unique per city.
//
// Rows written by the geocoding normalizer hold sibling-city names rather
// than sub-city areas (see Normalizer in internal/location).
type Neighborhood struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CityID    int64     `json:"cityId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Address is a saved street address attached to one neighborhood.
type Address struct {
	ID             int64     `json:"id"`
	Address        string    `json:"address"`
	NeighborhoodID int64     `json:"neighborhoodId"`
	GoogleSearch   *string   `json:"googleSearch"`
	Phone          string    `json:"phone"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AddressInput is the payload for saving a new address.
type AddressInput struct {
	Address        string `json:"address" yaml:"address"`
	NeighborhoodID int64  `json:"neighborhoodId" yaml:"neighborhood_id"`
	GoogleSearch   string `json:"googleSearch,omitempty" yaml:"google_search"`
	Phone          string `json:"phone" yaml:"phone"`
}

// Snapshot is the full picker dataset served to the address form.
type Snapshot struct {
	Cities        []City         `json:"cities"`
	States        []State        `json:"states"`
	Neighborhoods []Neighborhood `json:"neighborhoods"`
}

// LocationData summarizes a resolved geocoding query.
type LocationData struct {
	State         string   `json:"state"`
	City          string   `json:"city"`
	Neighborhoods []string `json:"neighborhoods"`
}

// NormalizeName trims surrounding whitespace and converts the name to
// Unicode NFC so that canonically equivalent spellings share one row.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
