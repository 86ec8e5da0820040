package repository

import (
	"context"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

// RouteSearchRepository は検索結果をTTL付きで保存する
type RouteSearchRepository interface {
	// Save はIDを採番して保存し、IDの入った検索結果を返す
	Save(ctx context.Context, search *model.RouteSearch, ttlHours int) (*model.RouteSearch, error)
	// Get は見つからない・期限切れの場合 model.ErrRouteSearchNotFound を返す
	Get(ctx context.Context, id string) (*model.RouteSearch, error)
}
