// Package geojson measures distances on the globe and builds the GeoJSON
// served to the business map.
package geojson

import (
	"math"

	"github.com/freedome/freedome"
)

// DefaultSegments controls the number of segments output in the geometry created
// by CircleGeom.
var DefaultSegments float64 = 20

// EarthRadiusKM is the mean radius of the earth in kilometers
const EarthRadiusKM float64 = 6371.0

// Haversine computes the great-circle distance in kilometers between two
// coordinates.
func Haversine(from, to freedome.Coordinates) (distanceKM float64) {
	var deltaLat = (to.Lat - from.Lat) * (math.Pi / 180)
	var deltaLon = (to.Lng - from.Lng) * (math.Pi / 180)

	var a = math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(from.Lat*(math.Pi/180))*math.Cos(to.Lat*(math.Pi/180))*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	var c = 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	distanceKM = EarthRadiusKM * c

	return
}

// Geometry is a GeoJSON geometry object.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// Point returns a Point geometry at c. GeoJSON orders positions lng, lat.
func Point(c freedome.Coordinates) Geometry {
	return Geometry{Type: "Point", Coordinates: []float64{c.Lng, c.Lat}}
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// NewFeature returns a Feature with the given geometry and properties.
func NewFeature(g Geometry, props map[string]interface{}) Feature {
	if props == nil {
		props = map[string]interface{}{}
	}
	return Feature{Type: "Feature", Geometry: g, Properties: props}
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns a collection holding features.
func NewFeatureCollection(features ...Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// CircleGeom outputs a GeoJSON polygon approximating a circle of radius
// radiusKM kilometers centered at c.
func CircleGeom(c freedome.Coordinates, radiusKM float64) Geometry {
	// Based on https://gist.github.com/mashbridge/7331812

	var coords [][]float64

	// Convert to radians
	cLat := c.Lat * (2.0 * math.Pi) / 360.0
	cLng := c.Lng * (2.0 * math.Pi) / 360.0

	// Distance along the "true course radial"
	// http://www.edwilliams.org/avform.htm#LL
	d := radiusKM / EarthRadiusKM

	f := func(p float64) []float64 {
		lat := math.Asin(
			math.Sin(cLat)*math.Cos(d) +
				math.Cos(cLat)*math.Sin(d)*math.Cos(p))

		dLng := math.Atan2(
			math.Sin(p)*math.Sin(d)*math.Cos(cLat),
			math.Cos(d)-math.Sin(cLat)*math.Sin(lat))

		lng := math.Mod(
			cLng-dLng+math.Pi,
			2.0*math.Pi,
		) - math.Pi

		// Convert back to degrees
		lat *= 360.0 / (2.0 * math.Pi)
		lng *= 360.0 / (2.0 * math.Pi)

		return []float64{lng, lat}
	}

	step := (2.0 * math.Pi) / DefaultSegments
	for p := 0.0; p > -2*math.Pi+step/2; p -= step {
		coords = append(coords, f(p))
	}
	coords = append(coords, f(0))

	return Geometry{
		Type:        "Polygon",
		Coordinates: [][][]float64{coords},
	}
}
