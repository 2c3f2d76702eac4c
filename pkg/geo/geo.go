package geo

import "math"

// earthRadiusMiles is the mean radius of the Earth in miles.
const earthRadiusMiles = 3958.8

// Distance returns the great-circle distance in miles between two
// coordinate pairs, computed with the haversine formula. Inputs are
// assumed to be valid decimal degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
