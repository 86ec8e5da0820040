package model

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
)

// Maneuver 1回の操作（"turn" / "left" など）
type Maneuver struct {
	Type     string       `json:"type"`
	Modifier string       `json:"modifier,omitempty"`
	Location *Coordinates `json:"location,omitempty"` // 操作地点（取得できた場合のみ）
}

// RouteStep ルート上の1ステップ。ゲートウェイのレスポンスからのみ生成される
type RouteStep struct {
	Instruction string   `json:"instruction"`
	Distance    float64  `json:"distance"` // meters
	Duration    float64  `json:"duration"` // seconds
	Maneuver    Maneuver `json:"maneuver"`
}

// Route 経路候補
type Route struct {
	ID            string         `json:"id"`
	Distance      float64        `json:"distance"` // meters
	Duration      float64        `json:"duration"` // seconds
	Geometry      orb.LineString `json:"geometry"` // [lng, lat] の配列
	Steps         []RouteStep    `json:"steps"`
	IsAlternative bool           `json:"is_alternative"`
}

// RouteID レスポンス内の順番からルートIDを生成する（"route-0", "route-1", ...）
func RouteID(index int) string {
	return fmt.Sprintf("route-%d", index)
}

// RouteSummary ルート一覧表示用の要約
type RouteSummary struct {
	ID            string  `json:"id"`
	Distance      float64 `json:"distance"`
	Duration      float64 `json:"duration"`
	DistanceText  string  `json:"distance_text"`
	DurationText  string  `json:"duration_text"`
	StepCount     int     `json:"step_count"`
	IsAlternative bool    `json:"is_alternative"`
	Selected      bool    `json:"selected"`
}

// RouteSearch 検索結果の保存単位（共有・再取得用）
type RouteSearch struct {
	ID              string      `json:"id"`
	OriginText      string      `json:"origin_text"`
	DestinationText string      `json:"destination_text"`
	Origin          Coordinates `json:"origin"`
	Destination     Coordinates `json:"destination"`
	Routes          []Route     `json:"routes"`
	CreatedAt       time.Time   `json:"created_at"`
}

// FirestoreRouteSearch Firestore保存用の構造体
// Firestoreは配列の配列を保存できないため、ジオメトリは座標オブジェクトの配列にする
type FirestoreRouteSearch struct {
	OriginText      string           `firestore:"origin_text"`
	DestinationText string           `firestore:"destination_text"`
	Origin          Coordinates      `firestore:"origin"`
	Destination     Coordinates      `firestore:"destination"`
	Routes          []FirestoreRoute `firestore:"routes"`
	CreatedAt       time.Time        `firestore:"created_at"`
	ExpireAt        time.Time        `firestore:"expireAt"`
}

// FirestoreRoute Firestore保存用のルート
type FirestoreRoute struct {
	ID            string          `firestore:"id"`
	Distance      float64         `firestore:"distance"`
	Duration      float64         `firestore:"duration"`
	Path          []Coordinates   `firestore:"path"`
	Steps         []FirestoreStep `firestore:"steps"`
	IsAlternative bool            `firestore:"is_alternative"`
}

// FirestoreStep Firestore保存用のステップ
type FirestoreStep struct {
	Instruction      string       `firestore:"instruction"`
	Distance         float64      `firestore:"distance"`
	Duration         float64      `firestore:"duration"`
	ManeuverType     string       `firestore:"maneuver_type"`
	ManeuverModifier string       `firestore:"maneuver_modifier"`
	ManeuverLocation *Coordinates `firestore:"maneuver_location"`
}

// ToFirestoreRouteSearch TTL付きのFirestore用構造体に変換
func (rs *RouteSearch) ToFirestoreRouteSearch(ttlHours int) *FirestoreRouteSearch {
	routes := make([]FirestoreRoute, len(rs.Routes))
	for i, r := range rs.Routes {
		path := make([]Coordinates, len(r.Geometry))
		for j, p := range r.Geometry {
			path[j] = CoordinatesFromPoint(p)
		}
		steps := make([]FirestoreStep, len(r.Steps))
		for j, s := range r.Steps {
			steps[j] = FirestoreStep{
				Instruction:      s.Instruction,
				Distance:         s.Distance,
				Duration:         s.Duration,
				ManeuverType:     s.Maneuver.Type,
				ManeuverModifier: s.Maneuver.Modifier,
				ManeuverLocation: s.Maneuver.Location,
			}
		}
		routes[i] = FirestoreRoute{
			ID:            r.ID,
			Distance:      r.Distance,
			Duration:      r.Duration,
			Path:          path,
			Steps:         steps,
			IsAlternative: r.IsAlternative,
		}
	}

	return &FirestoreRouteSearch{
		OriginText:      rs.OriginText,
		DestinationText: rs.DestinationText,
		Origin:          rs.Origin,
		Destination:     rs.Destination,
		Routes:          routes,
		CreatedAt:       rs.CreatedAt,
		ExpireAt:        rs.CreatedAt.Add(time.Duration(ttlHours) * time.Hour),
	}
}

// ToRouteSearch Firestoreのドキュメントからドメインモデルに戻す
func (f *FirestoreRouteSearch) ToRouteSearch(id string) *RouteSearch {
	routes := make([]Route, len(f.Routes))
	for i, r := range f.Routes {
		geometry := make(orb.LineString, len(r.Path))
		for j, c := range r.Path {
			geometry[j] = c.Point()
		}
		steps := make([]RouteStep, len(r.Steps))
		for j, s := range r.Steps {
			steps[j] = RouteStep{
				Instruction: s.Instruction,
				Distance:    s.Distance,
				Duration:    s.Duration,
				Maneuver: Maneuver{
					Type:     s.ManeuverType,
					Modifier: s.ManeuverModifier,
					Location: s.ManeuverLocation,
				},
			}
		}
		routes[i] = Route{
			ID:            r.ID,
			Distance:      r.Distance,
			Duration:      r.Duration,
			Geometry:      geometry,
			Steps:         steps,
			IsAlternative: r.IsAlternative,
		}
	}

	return &RouteSearch{
		ID:              id,
		OriginText:      f.OriginText,
		DestinationText: f.DestinationText,
		Origin:          f.Origin,
		Destination:     f.Destination,
		Routes:          routes,
		CreatedAt:       f.CreatedAt,
	}
}
