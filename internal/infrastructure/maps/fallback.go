package maps

import (
	"context"
	"log"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/repository"
)

// 失敗をエラーにせず「結果なし」として扱う呼び出し。失敗はすべてログに残す

// GeocodeOrAbsent は住所を座標に変換する。失敗時は false を返す
func GeocodeOrAbsent(ctx context.Context, gateway repository.RoutingGateway, address string) (model.Coordinates, bool) {
	coords, err := gateway.Geocode(ctx, address)
	if err != nil {
		log.Printf("⚠️ ジオコーディング失敗 %q: %v", address, err)
		return model.Coordinates{}, false
	}
	return coords, true
}

// ReverseGeocodeOrUnknown は座標の地名を返す。失敗時は UnknownLocation
func ReverseGeocodeOrUnknown(ctx context.Context, gateway repository.RoutingGateway, c model.Coordinates) string {
	name, err := gateway.ReverseGeocode(ctx, c)
	if err != nil {
		log.Printf("⚠️ 逆ジオコーディング失敗 %s: %v", c, err)
		return model.UnknownLocation
	}
	return name
}

// GetRoutesOrEmpty はルート候補を返す。失敗時は空のスライス
func GetRoutesOrEmpty(ctx context.Context, gateway repository.RoutingGateway, origin, destination model.Coordinates, includeAlternatives bool) []model.Route {
	routes, err := gateway.GetRoutes(ctx, origin, destination, includeAlternatives)
	if err != nil {
		log.Printf("⚠️ ルート取得失敗 %s -> %s: %v", origin, destination, err)
		return []model.Route{}
	}
	if routes == nil {
		return []model.Route{}
	}
	return routes
}
