package geo

import (
	"math"

	"github.com/metkashop/metka-miniapp/internal/domain/delivery"
)

const earthRadiusKm = 6371

// DistanceKm — расстояние по дуге большого круга (haversine) в километрах.
// Валидность координат не проверяется: NaN на входе дает NaN на выходе.
func DistanceKm(a, b delivery.Coordinates) float64 {
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}
