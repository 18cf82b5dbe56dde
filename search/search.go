// Package search holds the one filtering routine shared by every listing in
// freedome: the business results, the offers and events pages and the map.
//
// Callers differ only in how they pull Fields out of their records. All
// functions are total: missing data never matches, empty criteria never
// exclude.
package search

import (
	"strings"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/geojson"
)

// DefaultRadiusKM is used when a radius search doesn't say how far to look.
const DefaultRadiusKM = 20.0

// Criteria are the user's search inputs. Zero values don't filter.
type Criteria struct {
	Category string
	Location string
	Keyword  string

	// Near enables the radius filter. RadiusKM <= 0 means DefaultRadiusKM.
	Near     *freedome.Coordinates
	RadiusKM float64
}

// Fields are the parts of a record that Criteria look at.
type Fields struct {
	Category    string
	Location    string
	Keywords    string
	Coordinates *freedome.Coordinates
}

// BusinessFields reads the searchable fields of a business user. Users without
// a business profile have no fields and match only empty criteria.
func BusinessFields(u freedome.User) Fields {
	if u.Business == nil {
		return Fields{}
	}
	return Fields{
		Category:    u.Business.Category,
		Location:    u.Business.Location,
		Keywords:    u.Business.Keywords,
		Coordinates: u.Business.Coordinates,
	}
}

// CriteriaFor converts a BusinessSearchRequest.
func CriteriaFor(req freedome.BusinessSearchRequest) Criteria {
	return Criteria{
		Category: req.Category,
		Location: req.Location,
		Keyword:  req.Keyword,
		Near:     req.Near,
		RadiusKM: req.RadiusKM,
	}
}

// ListingCriteria converts a ListingRequest.
func ListingCriteria(req freedome.ListingRequest) Criteria {
	return Criteria{
		Category: req.Category,
		Location: req.Location,
		Keyword:  req.Keyword,
	}
}

// IsEmpty reports whether c filters nothing.
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Category) == "" &&
		len(Tokens(c.Location)) == 0 &&
		strings.TrimSpace(c.Keyword) == "" &&
		c.Near == nil
}

// Match reports whether f satisfies every non-empty criterion.
func (c Criteria) Match(f Fields) bool {
	if q := strings.TrimSpace(c.Category); q != "" && !ContainsFold(f.Category, q) {
		return false
	}
	if !TokenMatch(c.Location, f.Location) {
		return false
	}
	if q := strings.TrimSpace(c.Keyword); q != "" && !ContainsFold(f.Keywords, q) {
		return false
	}
	if c.Near != nil {
		radius := c.RadiusKM
		if radius <= 0 {
			radius = DefaultRadiusKM
		}
		if !WithinRadius(*c.Near, f.Coordinates, radius) {
			return false
		}
	}
	return true
}

// Filter returns the items whose fields match c, in their original order.
// The input slice isn't modified.
func Filter[T any](items []T, c Criteria, fields func(T) Fields) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if c.Match(fields(item)) {
			out = append(out, item)
		}
	}
	return out
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// WithinRadius reports whether c lies within radiusKM of center. A nil c is
// never within any radius.
func WithinRadius(center freedome.Coordinates, c *freedome.Coordinates, radiusKM float64) bool {
	if c == nil {
		return false
	}
	return geojson.Haversine(center, *c) <= radiusKM
}

// FavoritesFirst returns items with the favorites moved to the front. Both
// groups keep their original relative order.
func FavoritesFirst[T any](items []T, isFavorite func(T) bool) []T {
	favs := make([]T, 0, len(items))
	var rest []T
	for _, item := range items {
		if isFavorite(item) {
			favs = append(favs, item)
		} else {
			rest = append(rest, item)
		}
	}
	return append(favs, rest...)
}
