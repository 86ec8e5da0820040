package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Witalo2025/TUMAPS2/internal/domain/helper"
	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/repository"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/database"
)

// 1回の周辺検索で返す最大件数
const nearbyPOILimit = 50

// PostgresPOIsRepository PostGIS付きのpoisテーブルからPOIを参照する
type PostgresPOIsRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresPOIsRepository(client *database.PostgreSQLClient) repository.POIsRepository {
	return &PostgresPOIsRepository{
		client: client,
	}
}

// poiRow クエリ結果を受け取るための構造体
type poiRow struct {
	ID       string
	Name     string
	Category string
	Icon     sql.NullString
	Location string
	Distance sql.NullFloat64
}

func (r *poiRow) toPOI() (*model.POI, error) {
	coords, err := ParseGeoPoint(r.Location)
	if err != nil {
		return nil, err
	}
	poi := &model.POI{
		ID:          r.ID,
		Name:        r.Name,
		Category:    model.POICategory(r.Category),
		Coordinates: coords,
	}
	if r.Icon.Valid {
		poi.Icon = r.Icon.String
	}
	poi.Icon = poi.DisplayIcon()
	return poi, nil
}

func (r *PostgresPOIsRepository) List(ctx context.Context) ([]model.POI, error) {
	query := `SELECT id, name, category, icon, ST_AsGeoJSON(location) FROM pois ORDER BY id`

	rows, err := r.client.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("POI一覧の取得失敗: %w", err)
	}
	defer rows.Close()

	var pois []model.POI
	for rows.Next() {
		var row poiRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Category, &row.Icon, &row.Location); err != nil {
			return nil, fmt.Errorf("POIデータスキャンエラー: %w", err)
		}
		poi, err := row.toPOI()
		if err != nil {
			return nil, err
		}
		pois = append(pois, *poi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("行イテレーション中のエラー: %w", err)
	}
	return pois, nil
}

func (r *PostgresPOIsRepository) GetByID(ctx context.Context, id string) (*model.POI, error) {
	query := `SELECT id, name, category, icon, ST_AsGeoJSON(location) FROM pois WHERE id = $1`

	var row poiRow
	err := r.client.DB.QueryRowContext(ctx, query, id).
		Scan(&row.ID, &row.Name, &row.Category, &row.Icon, &row.Location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", model.ErrPOINotFound, id)
		}
		return nil, fmt.Errorf("POIデータの取得失敗: %w", err)
	}
	return row.toPOI()
}

// FindNearby PostGISの ST_DWithin で半径内のPOIを近い順に取得する
func (r *PostgresPOIsRepository) FindNearby(ctx context.Context, center model.Coordinates, radiusMeters float64, categories []model.POICategory) ([]model.NearbyPOI, error) {
	query := `
		SELECT
			p.id, p.name, p.category, p.icon,
			ST_AsGeoJSON(p.location),
			ST_Distance(ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, p.location::geography) AS distance_meters
		FROM pois p
		WHERE ($3 <= 0 OR ST_DWithin(ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, p.location::geography, $3))
		  AND (cardinality($4::text[]) = 0 OR p.category = ANY($4::text[]))
		ORDER BY distance_meters
		LIMIT $5
	`

	rows, err := r.client.DB.QueryContext(ctx, query,
		center.Lng, center.Lat, radiusMeters, pq.Array(categoriesToStrings(categories)), nearbyPOILimit)
	if err != nil {
		return nil, fmt.Errorf("周辺POI検索失敗: %w", err)
	}
	defer rows.Close()

	var nearby []model.NearbyPOI
	for rows.Next() {
		var row poiRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Category, &row.Icon, &row.Location, &row.Distance); err != nil {
			return nil, fmt.Errorf("POIデータスキャンエラー: %w", err)
		}
		poi, err := row.toPOI()
		if err != nil {
			return nil, err
		}
		distance := row.Distance.Float64
		if !row.Distance.Valid {
			distance = helper.DistanceBetween(center, poi.Coordinates)
		}
		nearby = append(nearby, model.NearbyPOI{
			POI:            *poi,
			DistanceMeters: distance,
			DistanceText:   helper.FormatDistance(distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("行イテレーション中のエラー: %w", err)
	}
	return nearby, nil
}
