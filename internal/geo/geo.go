// Package geo provides the small amount of spherical geometry the station
// search needs: great-circle distances and rectangular bounding boxes.
package geo

import "math"

// earthRadiusMiles is the mean Earth radius used by the haversine formula.
const earthRadiusMiles = 3956.0

// milesPerDegreeLat is the approximate north-south extent of one degree of
// latitude, used when deriving bounding boxes.
const milesPerDegreeLat = 69.0

// cosFloor keeps the longitude-delta division from blowing up near the poles.
const cosFloor = 1e-6

// DistanceMiles returns the great-circle distance between two points given in
// decimal degrees. Identical points yield exactly 0.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)

	// Clamp before Asin: float rounding can push a marginally above 1 for
	// near-antipodal points, which would produce NaN.
	if a > 1 {
		a = 1
	}

	return 2 * math.Asin(math.Sqrt(a)) * earthRadiusMiles
}

// BoundingBox approximates a square box of the given radius around a center
// point and returns (west, south, east, north) in decimal degrees, rounded to
// 7 decimal places for upstream query compatibility.
//
// The box is rectangular while the search radius is circular, so callers must
// post-filter results with DistanceMiles; the box only bounds a candidate
// superset.
func BoundingBox(lat, lon, radiusMiles float64) (west, south, east, north float64) {
	latDelta := radiusMiles / milesPerDegreeLat

	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < cosFloor {
		cosLat = cosFloor
	}
	lonDelta := radiusMiles / (milesPerDegreeLat * cosLat)

	west = round7(lon - lonDelta)
	south = round7(lat - latDelta)
	east = round7(lon + lonDelta)
	north = round7(lat + latDelta)
	return west, south, east, north
}

func round7(v float64) float64 {
	return math.Round(v*1e7) / 1e7
}
