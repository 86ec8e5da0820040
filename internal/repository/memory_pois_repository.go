package repository

import (
	"context"
	"fmt"

	"github.com/Witalo2025/TUMAPS2/internal/domain/helper"
	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/repository"
)

// MemoryPOIsRepository 起動時に渡されたPOIだけを持つリポジトリ（POI_STORE=memory）
type MemoryPOIsRepository struct {
	pois []model.POI
	byID map[string]int
}

// NewMemoryPOIsRepository pois が nil ならサンプルデータを使う
func NewMemoryPOIsRepository(pois []model.POI) repository.POIsRepository {
	if pois == nil {
		pois = SamplePOIs()
	} else {
		pois = append([]model.POI(nil), pois...)
	}
	byID := make(map[string]int, len(pois))
	for i := range pois {
		pois[i].Icon = pois[i].DisplayIcon()
		byID[pois[i].ID] = i
	}
	return &MemoryPOIsRepository{pois: pois, byID: byID}
}

func (r *MemoryPOIsRepository) List(ctx context.Context) ([]model.POI, error) {
	out := make([]model.POI, len(r.pois))
	copy(out, r.pois)
	return out, nil
}

func (r *MemoryPOIsRepository) GetByID(ctx context.Context, id string) (*model.POI, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrPOINotFound, id)
	}
	poi := r.pois[i]
	return &poi, nil
}

func (r *MemoryPOIsRepository) FindNearby(ctx context.Context, center model.Coordinates, radiusMeters float64, categories []model.POICategory) ([]model.NearbyPOI, error) {
	nearby := helper.FilterNearbyPOIs(r.pois, center, radiusMeters, categories)
	if len(nearby) > nearbyPOILimit {
		nearby = nearby[:nearbyPOILimit]
	}
	return nearby, nil
}

// SamplePOIs 大阪市中心部のサンプルPOI
func SamplePOIs() []model.POI {
	return []model.POI{
		{ID: "poi-gas-1", Name: "ENEOS 梅田SS", Category: model.CategoryGasStation, Coordinates: model.Coordinates{Lng: 135.4935, Lat: 34.7048}},
		{ID: "poi-gas-2", Name: "出光 難波SS", Category: model.CategoryGasStation, Coordinates: model.Coordinates{Lng: 135.4998, Lat: 34.6651}},
		{ID: "poi-hospital-1", Name: "北野病院", Category: model.CategoryHospital, Coordinates: model.Coordinates{Lng: 135.5058, Lat: 34.7057}},
		{ID: "poi-hospital-2", Name: "大阪市立大学医学部附属病院", Category: model.CategoryHospital, Coordinates: model.Coordinates{Lng: 135.5086, Lat: 34.6456}},
		{ID: "poi-police-1", Name: "曽根崎警察署", Category: model.CategoryPolice, Coordinates: model.Coordinates{Lng: 135.5013, Lat: 34.7008}},
		{ID: "poi-police-2", Name: "南警察署", Category: model.CategoryPolice, Coordinates: model.Coordinates{Lng: 135.5061, Lat: 34.6721}},
		{ID: "poi-parking-1", Name: "タイムズ 梅田第1", Category: model.CategoryParking, Coordinates: model.Coordinates{Lng: 135.4972, Lat: 34.7031}},
		{ID: "poi-parking-2", Name: "なんばパークス駐車場", Category: model.CategoryParking, Coordinates: model.Coordinates{Lng: 135.5017, Lat: 34.6618}},
		{ID: "poi-restaurant-1", Name: "新梅田食道街", Category: model.CategoryRestaurant, Coordinates: model.Coordinates{Lng: 135.4981, Lat: 34.7030}},
		{ID: "poi-restaurant-2", Name: "道頓堀 くくる", Category: model.CategoryRestaurant, Coordinates: model.Coordinates{Lng: 135.5021, Lat: 34.6688}},
	}
}
