package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/repository"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/maps"
)

// 周辺POI検索の既定半径と上限 (m)
const (
	DefaultPOIRadiusMeters = 1000.0
	MaxPOIRadiusMeters     = 20000.0
)

type PlacesUseCase interface {
	// Geocode は住所の最初の候補の座標を返す
	Geocode(ctx context.Context, query string) (*model.GeocodeResponse, error)
	// ReverseGeocode は座標の地名を返す。解決できない場合は UnknownLocation でエラーにはしない
	ReverseGeocode(ctx context.Context, c model.Coordinates) (*model.ReverseGeocodeResponse, error)
	NearbyPOIs(ctx context.Context, center model.Coordinates, radiusMeters float64, categories []model.POICategory) ([]model.NearbyPOI, error)
	GetPOI(ctx context.Context, id string) (*model.POI, error)
	// GetRouteSearch は保存された検索結果を取得する
	GetRouteSearch(ctx context.Context, searchID string) (*model.RouteSearch, error)
	// PreviewRoutes はセッションを作らずにルート候補の要約を返す
	// 住所が解決できない、またはルートがない場合は空の一覧でエラーにはしない
	PreviewRoutes(ctx context.Context, originText, destinationText string) (*model.RoutePreviewResponse, error)
}

type placesUseCaseImpl struct {
	gateway    repository.RoutingGateway
	poiRepo    repository.POIsRepository
	searchRepo repository.RouteSearchRepository
}

func NewPlacesUseCase(gateway repository.RoutingGateway, poiRepo repository.POIsRepository, searchRepo repository.RouteSearchRepository) PlacesUseCase {
	return &placesUseCaseImpl{
		gateway:    gateway,
		poiRepo:    poiRepo,
		searchRepo: searchRepo,
	}
}

func (u *placesUseCaseImpl) Geocode(ctx context.Context, query string) (*model.GeocodeResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &model.ValidationError{Field: "q", Message: "住所を入力してください"}
	}
	coords, err := u.gateway.Geocode(ctx, query)
	if err != nil {
		log.Printf("⚠️ ジオコーディング失敗 %q: %v", query, err)
		return nil, fmt.Errorf("住所の検索に失敗: %w", err)
	}
	return &model.GeocodeResponse{Query: query, Coordinates: coords}, nil
}

func (u *placesUseCaseImpl) ReverseGeocode(ctx context.Context, c model.Coordinates) (*model.ReverseGeocodeResponse, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &model.ReverseGeocodeResponse{
		Coordinates: c,
		PlaceName:   maps.ReverseGeocodeOrUnknown(ctx, u.gateway, c),
	}, nil
}

func (u *placesUseCaseImpl) NearbyPOIs(ctx context.Context, center model.Coordinates, radiusMeters float64, categories []model.POICategory) ([]model.NearbyPOI, error) {
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultPOIRadiusMeters
	}
	if radiusMeters > MaxPOIRadiusMeters {
		return nil, &model.ValidationError{Field: "radius", Message: fmt.Sprintf("半径は%.0fm以下で指定してください", MaxPOIRadiusMeters)}
	}

	pois, err := u.poiRepo.FindNearby(ctx, center, radiusMeters, categories)
	if err != nil {
		return nil, fmt.Errorf("周辺POIの取得に失敗: %w", err)
	}
	if pois == nil {
		pois = []model.NearbyPOI{}
	}
	return pois, nil
}

func (u *placesUseCaseImpl) GetPOI(ctx context.Context, id string) (*model.POI, error) {
	return u.poiRepo.GetByID(ctx, id)
}

func (u *placesUseCaseImpl) GetRouteSearch(ctx context.Context, searchID string) (*model.RouteSearch, error) {
	if u.searchRepo == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrRouteSearchNotFound, searchID)
	}
	return u.searchRepo.Get(ctx, searchID)
}

func (u *placesUseCaseImpl) PreviewRoutes(ctx context.Context, originText, destinationText string) (*model.RoutePreviewResponse, error) {
	originText, destinationText = strings.TrimSpace(originText), strings.TrimSpace(destinationText)
	if originText == "" {
		return nil, &model.ValidationError{Field: model.FieldOrigin, Message: "出発地を入力してください"}
	}
	if destinationText == "" {
		return nil, &model.ValidationError{Field: model.FieldDestination, Message: "目的地を入力してください"}
	}

	resp := &model.RoutePreviewResponse{Routes: []model.RouteSummary{}}
	origin, ok := maps.GeocodeOrAbsent(ctx, u.gateway, originText)
	if ok {
		resp.Origin = &origin
	}
	destination, ok := maps.GeocodeOrAbsent(ctx, u.gateway, destinationText)
	if ok {
		resp.Destination = &destination
	}
	if resp.Origin == nil || resp.Destination == nil {
		return resp, nil
	}

	routes := maps.GetRoutesOrEmpty(ctx, u.gateway, origin, destination, true)
	selected := ""
	if len(routes) > 0 {
		selected = routes[0].ID
	}
	resp.Routes = summarizeRoutes(routes, selected)
	return resp, nil
}
