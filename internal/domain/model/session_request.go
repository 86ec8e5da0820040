package model

import "github.com/paulmach/orb/geojson"

// SearchRequest 出発地・目的地の住所による経路検索
type SearchRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// LocationRequest 端末の現在地サンプル
type LocationRequest struct {
	Lng *float64 `json:"lng" binding:"required"`
	Lat *float64 `json:"lat" binding:"required"`
}

// ToCoordinates リクエストを座標に変換
func (r *LocationRequest) ToCoordinates() Coordinates {
	var c Coordinates
	if r.Lng != nil {
		c.Lng = *r.Lng
	}
	if r.Lat != nil {
		c.Lat = *r.Lat
	}
	return c
}

// StepRequest 手動でのステップ送り（deltaは+1/-1など）
type StepRequest struct {
	Delta int `json:"delta"`
}

// SessionResponse セッションの状態と表示用の付加情報
type SessionResponse struct {
	SessionID                 string          `json:"session_id"`
	State                     NavigationState `json:"state"`
	SelectedRoute             *Route          `json:"selected_route"`
	CurrentStep               *RouteStep      `json:"current_step"`
	RouteSummaries            []RouteSummary  `json:"route_summaries"`
	DistanceToDestination     *float64        `json:"distance_to_destination,omitempty"`
	DistanceToDestinationText string          `json:"distance_to_destination_text,omitempty"`
	SearchID                  string          `json:"search_id,omitempty"`
}

// GeocodeResponse 住所から座標への変換結果
type GeocodeResponse struct {
	Query       string      `json:"query"`
	Coordinates Coordinates `json:"coordinates"`
}

// ReverseGeocodeResponse 座標から地名への変換結果
type ReverseGeocodeResponse struct {
	Coordinates Coordinates `json:"coordinates"`
	PlaceName   string      `json:"place_name"`
}

// RoutePreviewResponse セッションを作らずに確認するルート候補
// 解決できなかった地点は nil
type RoutePreviewResponse struct {
	Origin      *Coordinates   `json:"origin"`
	Destination *Coordinates   `json:"destination"`
	Routes      []RouteSummary `json:"routes"`
}

// MapLayersResponse 地図描画用のGeoJSONと表示範囲
type MapLayersResponse struct {
	Layers *geojson.FeatureCollection `json:"layers"`
	Bounds []float64                  `json:"bounds,omitempty"` // [minLng, minLat, maxLng, maxLat]
}

// MapStyle 地図スタイルの選択結果
type MapStyle struct {
	StyleID           string `json:"style_id"`
	StyleURL          string `json:"style_url"`
	DarkMode          bool   `json:"dark_mode"`
	CredentialMissing bool   `json:"credential_missing"`
}
