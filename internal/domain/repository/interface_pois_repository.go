package repository

import (
	"context"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

// POIsRepository は読み取り専用のPOI参照データへのアクセスを提供する
type POIsRepository interface {
	List(ctx context.Context) ([]model.POI, error)
	GetByID(ctx context.Context, id string) (*model.POI, error)
	// 中心から半径内のPOIを近い順に返す（categoriesが空なら全カテゴリ）
	FindNearby(ctx context.Context, center model.Coordinates, radiusMeters float64, categories []model.POICategory) ([]model.NearbyPOI, error)
}
