package model

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
)

// Coordinates WGS84の経緯度（度）を表す値型
type Coordinates struct {
	Lng float64 `json:"lng" firestore:"lng"`
	Lat float64 `json:"lat" firestore:"lat"`
}

// Point orb.Point（[lng, lat]）に変換
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// CoordinatesFromPoint orb.Point から Coordinates を作成
func CoordinatesFromPoint(p orb.Point) Coordinates {
	return Coordinates{Lng: p.Lon(), Lat: p.Lat()}
}

// PathKey URLパスに埋め込む "lng,lat" 形式の文字列
func (c Coordinates) PathKey() string {
	return strconv.FormatFloat(c.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// Validate 緯度経度の範囲チェック
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return &ValidationError{Field: "lat", Message: "緯度は-90から90の範囲で指定してください"}
	}
	if c.Lng < -180 || c.Lng > 180 {
		return &ValidationError{Field: "lng", Message: "経度は-180から180の範囲で指定してください"}
	}
	return nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lng, c.Lat)
}

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
