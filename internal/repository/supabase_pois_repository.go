package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Witalo2025/TUMAPS2/internal/domain/helper"
	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/repository"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/database"
)

// REST経由では geography 列を読めないため、経緯度の数値列を選択する
const supabasePOIColumns = "id,name,category,icon,lng,lat"

// SupabasePOIsRepository Supabase REST API経由でPOIを参照する
type SupabasePOIsRepository struct {
	client *database.SupabaseClient
}

func NewSupabasePOIsRepository(client *database.SupabaseClient) repository.POIsRepository {
	return &SupabasePOIsRepository{
		client: client,
	}
}

// supabasePOIRow REST APIが返す1行
type supabasePOIRow struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Icon     *string `json:"icon"`
	Lng      float64 `json:"lng"`
	Lat      float64 `json:"lat"`
}

func (r supabasePOIRow) toPOI() model.POI {
	poi := model.POI{
		ID:          r.ID,
		Name:        r.Name,
		Category:    model.POICategory(r.Category),
		Coordinates: model.Coordinates{Lng: r.Lng, Lat: r.Lat},
	}
	if r.Icon != nil {
		poi.Icon = *r.Icon
	}
	poi.Icon = poi.DisplayIcon()
	return poi
}

func decodeSupabasePOIs(data []byte) ([]model.POI, error) {
	var rows []supabasePOIRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("POIデータのJSONアンマーシャル失敗: %w", err)
	}
	pois := make([]model.POI, len(rows))
	for i, row := range rows {
		pois[i] = row.toPOI()
	}
	return pois, nil
}

func (r *SupabasePOIsRepository) List(ctx context.Context) ([]model.POI, error) {
	data, _, err := r.client.GetClient().From("pois").Select(supabasePOIColumns, "exact", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("POI一覧の取得失敗: %w", err)
	}
	return decodeSupabasePOIs(data)
}

func (r *SupabasePOIsRepository) GetByID(ctx context.Context, id string) (*model.POI, error) {
	data, _, err := r.client.GetClient().From("pois").Select(supabasePOIColumns, "exact", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("POIデータの取得失敗: %w", err)
	}

	pois, err := decodeSupabasePOIs(data)
	if err != nil {
		return nil, err
	}
	if len(pois) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrPOINotFound, id)
	}
	return &pois[0], nil
}

// FindNearby カテゴリで絞り込んで取得し、距離の計算と並び替えはアプリ側で行う
func (r *SupabasePOIsRepository) FindNearby(ctx context.Context, center model.Coordinates, radiusMeters float64, categories []model.POICategory) ([]model.NearbyPOI, error) {
	query := r.client.GetClient().From("pois").Select(supabasePOIColumns, "exact", false)
	if len(categories) > 0 {
		query = query.In("category", categoriesToStrings(categories))
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("周辺POIデータの取得失敗: %w", err)
	}
	pois, err := decodeSupabasePOIs(data)
	if err != nil {
		return nil, err
	}

	nearby := helper.FilterNearbyPOIs(pois, center, radiusMeters, categories)
	if len(nearby) > nearbyPOILimit {
		nearby = nearby[:nearbyPOILimit]
	}
	return nearby, nil
}
