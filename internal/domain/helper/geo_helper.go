package helper

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

// earthRadiusMeters 地球の平均半径 (m)
const earthRadiusMeters = 6371000.0

// DistanceBetween は2地点間の大円距離をハバーサイン公式で計算する (m)
func DistanceBetween(a, b model.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// RouteBound はルート全体と任意の追加地点を含む表示範囲を返す
// padding は度単位（0.001 ≒ 111m）
func RouteBound(route *model.Route, padding float64, extra ...model.Coordinates) (orb.Bound, bool) {
	var points []orb.Point
	if route != nil {
		points = append(points, route.Geometry...)
	}
	for _, c := range extra {
		points = append(points, c.Point())
	}
	if len(points) == 0 {
		return orb.Bound{}, false
	}

	bound := orb.Bound{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		bound = bound.Extend(p)
	}
	return bound.Pad(padding), true
}

// BoundToSlice は orb.Bound を [minLng, minLat, maxLng, maxLat] に変換する
func BoundToSlice(b orb.Bound) []float64 {
	return []float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()}
}
