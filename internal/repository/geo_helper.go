package repository

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

// GeoPoint PostGIS POINT 型の JSON 表現（ST_AsGeoJSON の結果）
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// CoordinatesToGeoPoint model.Coordinates を PostGIS POINT 形式に変換
func CoordinatesToGeoPoint(c model.Coordinates) *GeoPoint {
	point := c.Point()
	return &GeoPoint{
		Type:        "Point",
		Coordinates: []float64{point.Lon(), point.Lat()},
	}
}

// GeoPointToCoordinates PostGIS POINT を model.Coordinates に変換
func GeoPointToCoordinates(geoPoint *GeoPoint) (model.Coordinates, bool) {
	if geoPoint == nil || len(geoPoint.Coordinates) < 2 {
		return model.Coordinates{}, false
	}
	return model.CoordinatesFromPoint(orb.Point{geoPoint.Coordinates[0], geoPoint.Coordinates[1]}), true
}

// ParseGeoPoint ST_AsGeoJSON の文字列から座標を取り出す
func ParseGeoPoint(raw string) (model.Coordinates, error) {
	var gp GeoPoint
	if err := json.Unmarshal([]byte(raw), &gp); err != nil {
		return model.Coordinates{}, fmt.Errorf("location JSONパースエラー: %w", err)
	}
	c, ok := GeoPointToCoordinates(&gp)
	if !ok {
		return model.Coordinates{}, fmt.Errorf("location の座標が不正です: %s", raw)
	}
	return c, nil
}

// categoriesToStrings クエリ用にカテゴリを文字列に変換
func categoriesToStrings(categories []model.POICategory) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}
