package repository

import (
	"context"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

// RoutingGateway は外部のルーティングAPIへの呼び出しを内部の型に変換する
// 各操作は1回だけリクエストを送り、リトライしない
// 失敗は *model.GatewayError（transport / no_match / credential）で返す
type RoutingGateway interface {
	// Geocode は住所の最初の候補の中心座標を返す
	Geocode(ctx context.Context, address string) (model.Coordinates, error)
	// ReverseGeocode は座標の最初の候補の地名を返す
	ReverseGeocode(ctx context.Context, coordinates model.Coordinates) (string, error)
	// GetRoutes は2地点間のルート候補を返す（"route-0" が本線、以降は代替ルート）
	GetRoutes(ctx context.Context, origin, destination model.Coordinates, includeAlternatives bool) ([]model.Route, error)
}
