package helper

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

// 地図レイヤーの種類（フロントエンドのスタイル指定に使う）
const (
	LayerRoute           = "route"
	LayerOrigin          = "origin"
	LayerDestination     = "destination"
	LayerCurrentLocation = "current_location"
	LayerPOI             = "poi"
	LayerManeuver        = "maneuver"
)

// BuildMapLayers はセッション状態からルート線・マーカー・POIのFeatureCollectionを作る
// 選択中のルートは最後に追加し、他の候補の上に描画されるようにする
func BuildMapLayers(state *model.NavigationState, pois []model.NearbyPOI) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	var selected *geojson.Feature
	for _, r := range state.Routes {
		if len(r.Geometry) == 0 {
			continue
		}
		f := geojson.NewFeature(orb.LineString(r.Geometry))
		f.ID = r.ID
		f.Properties["layer"] = LayerRoute
		f.Properties["route_id"] = r.ID
		f.Properties["selected"] = r.ID == state.SelectedRouteID
		f.Properties["alternative"] = r.IsAlternative
		f.Properties["distance_text"] = FormatDistance(r.Distance)
		f.Properties["duration_text"] = FormatDuration(r.Duration)
		if r.ID == state.SelectedRouteID {
			selected = f
			continue
		}
		fc.Append(f)
	}
	if selected != nil {
		fc.Append(selected)
	}

	if step := state.CurrentStep(); state.IsNavigating && step != nil && step.Maneuver.Location != nil {
		f := geojson.NewFeature(step.Maneuver.Location.Point())
		f.Properties["layer"] = LayerManeuver
		f.Properties["instruction"] = step.Instruction
		f.Properties["type"] = step.Maneuver.Type
		if step.Maneuver.Modifier != "" {
			f.Properties["modifier"] = step.Maneuver.Modifier
		}
		fc.Append(f)
	}

	appendMarker(fc, state.Origin, LayerOrigin)
	appendMarker(fc, state.Destination, LayerDestination)
	appendMarker(fc, state.CurrentLocation, LayerCurrentLocation)

	for _, p := range pois {
		f := geojson.NewFeature(p.Coordinates.Point())
		f.ID = p.ID
		f.Properties["layer"] = LayerPOI
		f.Properties["name"] = p.Name
		f.Properties["category"] = string(p.Category)
		f.Properties["icon"] = p.DisplayIcon()
		f.Properties["distance_text"] = p.DistanceText
		fc.Append(f)
	}

	return fc
}

func appendMarker(fc *geojson.FeatureCollection, c *model.Coordinates, layer string) {
	if c == nil {
		return
	}
	f := geojson.NewFeature(c.Point())
	f.Properties["layer"] = layer
	fc.Append(f)
}
