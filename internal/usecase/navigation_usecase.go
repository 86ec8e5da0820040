package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Witalo2025/TUMAPS2/internal/domain/helper"
	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/repository"
	"github.com/Witalo2025/TUMAPS2/internal/domain/service"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/geolocation"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/maps"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/voice"
)

// 地図に表示するPOIの検索半径 (m)
const mapPOIRadiusMeters = 1500.0

// 地図の表示範囲の余白（度）
const mapBoundPadding = 0.002

type NavigationUseCase interface {
	CreateSession(ctx context.Context) (*model.SessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*model.SessionResponse, error)
	// DeleteSession はセッションを終了し、位置情報の購読を解除する
	DeleteSession(ctx context.Context, sessionID string) error

	// Search は住所で経路を検索し、成功した結果を保存する
	Search(ctx context.Context, sessionID string, req *model.SearchRequest) (*model.SessionResponse, error)
	SelectRoute(ctx context.Context, sessionID, routeID string) (*model.SessionResponse, error)
	StartNavigation(ctx context.Context, sessionID string) (*model.SessionResponse, error)
	StopNavigation(ctx context.Context, sessionID string) (*model.SessionResponse, error)
	AdvanceStep(ctx context.Context, sessionID string, delta int) (*model.SessionResponse, error)
	// ReportLocation は端末の現在地を配信する。案内中であれば到着判定が行われる
	ReportLocation(ctx context.Context, sessionID string, location model.Coordinates) (*model.SessionResponse, error)
	ToggleVoice(ctx context.Context, sessionID string) (*model.SessionResponse, error)
	ToggleTheme(ctx context.Context, sessionID string) (*model.SessionResponse, error)

	// DrainAnnouncements は未再生の読み上げ文を取り出す
	DrainAnnouncements(ctx context.Context, sessionID string) ([]string, error)
	MapLayers(ctx context.Context, sessionID string, categories []model.POICategory) (*model.MapLayersResponse, error)
	MapStyle(ctx context.Context, sessionID string) (*model.MapStyle, error)
	// LocationName は現在地の地名を返す。解決できない場合は UnknownLocation
	LocationName(ctx context.Context, sessionID string) (*model.ReverseGeocodeResponse, error)
}

// navigationUseCaseImpl はNavigationUseCaseの実装
type navigationUseCaseImpl struct {
	store          *SessionStore
	gateway        repository.RoutingGateway
	poiRepo        repository.POIsRepository
	searchRepo     repository.RouteSearchRepository
	styles         *maps.StyleResolver
	sessionConfig  service.SessionConfig
	searchTTLHours int
}

// NewNavigationUseCase は新しいNavigationUseCaseインスタンスを作成
// poiRepo と searchRepo は nil でもよい（その機能を使わない）
func NewNavigationUseCase(
	store *SessionStore,
	gateway repository.RoutingGateway,
	poiRepo repository.POIsRepository,
	searchRepo repository.RouteSearchRepository,
	styles *maps.StyleResolver,
	sessionConfig service.SessionConfig,
	searchTTLHours int,
) NavigationUseCase {
	return &navigationUseCaseImpl{
		store:          store,
		gateway:        gateway,
		poiRepo:        poiRepo,
		searchRepo:     searchRepo,
		styles:         styles,
		sessionConfig:  sessionConfig,
		searchTTLHours: searchTTLHours,
	}
}

func (u *navigationUseCaseImpl) CreateSession(ctx context.Context) (*model.SessionResponse, error) {
	id := uuid.New().String()
	entry := &sessionEntry{
		feed:      geolocation.NewFeed(),
		announcer: voice.NewQueueAnnouncer(voice.DefaultQueueCapacity),
	}
	entry.controller = service.NewSessionController(id, u.gateway, entry.feed, entry.announcer, u.sessionConfig)
	u.store.put(id, entry)

	log.Printf("🆕 セッション作成: %s", id)
	return buildSessionResponse(id, entry.controller.State(), ""), nil
}

func (u *navigationUseCaseImpl) GetSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	entry, err := u.store.get(sessionID)
	if err != nil {
		return nil, err
	}
	return buildSessionResponse(sessionID, entry.controller.State(), entry.searchID()), nil
}

func (u *navigationUseCaseImpl) DeleteSession(ctx context.Context, sessionID string) error {
	entry, err := u.store.remove(sessionID)
	if err != nil {
		return err
	}
	entry.controller.Close()
	return nil
}

func (u *navigationUseCaseImpl) Search(ctx context.Context, sessionID string, req *model.SearchRequest) (*model.SessionResponse, error) {
	entry, err := u.store.get(sessionID)
	if err != nil {
		return nil, err
	}

	state, err := entry.controller.Search(ctx, req.Origin, req.Destination)
	if err != nil {
		return buildSessionResponse(sessionID, state, entry.searchID()), err
	}

	// 保存の失敗は検索結果には影響させない
	searchID := u.saveSearch(ctx, req, state)
	if searchID != "" {
		entry.setSearchID(searchID)
	}
	return buildSessionResponse(sessionID, state, entry.searchID()), nil
}

func (u *navigationUseCaseImpl) saveSearch(ctx context.Context, req *model.SearchRequest, state model.NavigationState) string {
	if u.searchRepo == nil || state.Origin == nil || state.Destination == nil {
		return ""
	}
	saved, err := u.searchRepo.Save(ctx, &model.RouteSearch{
		OriginText:      req.Origin,
		DestinationText: req.Destination,
		Origin:          *state.Origin,
		Destination:     *state.Destination,
		Routes:          state.Routes,
		CreatedAt:       time.Now(),
	}, u.searchTTLHours)
	if err != nil {
		log.Printf("⚠️ 検索結果の保存に失敗しました（検索は成功）: %v", err)
		return ""
	}
	return saved.ID
}

func (u *navigationUseCaseImpl) SelectRoute(ctx context.Context, sessionID, routeID string) (*model.SessionResponse, error) {
	return u.run(sessionID, func(c *service.SessionController) (model.NavigationState, error) {
		return c.SelectRoute(routeID)
	})
}

func (u *navigationUseCaseImpl) StartNavigation(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	return u.run(sessionID, (*service.SessionController).StartNavigation)
}

func (u *navigationUseCaseImpl) StopNavigation(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	return u.run(sessionID, (*service.SessionController).StopNavigation)
}

func (u *navigationUseCaseImpl) AdvanceStep(ctx context.Context, sessionID string, delta int) (*model.SessionResponse, error) {
	return u.run(sessionID, func(c *service.SessionController) (model.NavigationState, error) {
		return c.AdvanceStep(delta)
	})
}

func (u *navigationUseCaseImpl) ToggleVoice(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	return u.run(sessionID, (*service.SessionController).ToggleVoice)
}

func (u *navigationUseCaseImpl) ToggleTheme(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	return u.run(sessionID, (*service.SessionController).ToggleTheme)
}

func (u *navigationUseCaseImpl) ReportLocation(ctx context.Context, sessionID string, location model.Coordinates) (*model.SessionResponse, error) {
	if err := location.Validate(); err != nil {
		return nil, err
	}
	entry, err := u.store.get(sessionID)
	if err != nil {
		return nil, err
	}

	// 案内中は購読経由でコントローラに届く。購読者がいなければ現在地の記録だけ行う
	if delivered := entry.feed.Publish(location); delivered == 0 {
		state, err := entry.controller.UpdateLocation(location)
		if err != nil {
			return buildSessionResponse(sessionID, state, entry.searchID()), err
		}
	}
	return buildSessionResponse(sessionID, entry.controller.State(), entry.searchID()), nil
}

func (u *navigationUseCaseImpl) DrainAnnouncements(ctx context.Context, sessionID string) ([]string, error) {
	entry, err := u.store.get(sessionID)
	if err != nil {
		return nil, err
	}
	return entry.announcer.Drain(), nil
}

func (u *navigationUseCaseImpl) MapLayers(ctx context.Context, sessionID string, categories []model.POICategory) (*model.MapLayersResponse, error) {
	entry, err := u.store.get(sessionID)
	if err != nil {
		return nil, err
	}
	state := entry.controller.State()

	var pois []model.NearbyPOI
	if center := poiSearchCenter(&state); u.poiRepo != nil && center != nil {
		pois, err = u.poiRepo.FindNearby(ctx, *center, mapPOIRadiusMeters, categories)
		if err != nil {
			log.Printf("⚠️ 地図用のPOI取得に失敗しました: %v", err)
			pois = nil
		}
	}

	resp := &model.MapLayersResponse{Layers: helper.BuildMapLayers(&state, pois)}

	var extra []model.Coordinates
	for _, c := range []*model.Coordinates{state.Origin, state.Destination, state.CurrentLocation} {
		if c != nil {
			extra = append(extra, *c)
		}
	}
	if bound, ok := helper.RouteBound(state.SelectedRoute(), mapBoundPadding, extra...); ok {
		resp.Bounds = helper.BoundToSlice(bound)
	}
	return resp, nil
}

// poiSearchCenter 案内中は現在地、それ以外は目的地を中心にPOIを探す
func poiSearchCenter(state *model.NavigationState) *model.Coordinates {
	if state.IsNavigating && state.CurrentLocation != nil {
		return state.CurrentLocation
	}
	if state.Destination != nil {
		return state.Destination
	}
	return state.CurrentLocation
}

func (u *navigationUseCaseImpl) MapStyle(ctx context.Context, sessionID string) (*model.MapStyle, error) {
	entry, err := u.store.get(sessionID)
	if err != nil {
		return nil, err
	}
	style := u.styles.Resolve(entry.controller.State().DarkMode)
	return &style, nil
}

func (u *navigationUseCaseImpl) LocationName(ctx context.Context, sessionID string) (*model.ReverseGeocodeResponse, error) {
	entry, err := u.store.get(sessionID)
	if err != nil {
		return nil, err
	}
	state := entry.controller.State()
	if state.CurrentLocation == nil {
		return &model.ReverseGeocodeResponse{PlaceName: model.UnknownLocation}, nil
	}
	return &model.ReverseGeocodeResponse{
		Coordinates: *state.CurrentLocation,
		PlaceName:   maps.ReverseGeocodeOrUnknown(ctx, u.gateway, *state.CurrentLocation),
	}, nil
}

func (u *navigationUseCaseImpl) run(sessionID string, op func(*service.SessionController) (model.NavigationState, error)) (*model.SessionResponse, error) {
	entry, err := u.store.get(sessionID)
	if err != nil {
		return nil, err
	}
	state, err := op(entry.controller)
	return buildSessionResponse(sessionID, state, entry.searchID()), err
}

// buildSessionResponse は状態に表示用の情報を付け加える
func buildSessionResponse(sessionID string, state model.NavigationState, searchID string) *model.SessionResponse {
	resp := &model.SessionResponse{
		SessionID:      sessionID,
		State:          state,
		SelectedRoute:  state.SelectedRoute(),
		RouteSummaries: summarizeRoutes(state.Routes, state.SelectedRouteID),
		SearchID:       searchID,
	}
	if state.IsNavigating {
		resp.CurrentStep = state.CurrentStep()
	}
	if state.CurrentLocation != nil && state.Destination != nil {
		d := helper.DistanceBetween(*state.CurrentLocation, *state.Destination)
		resp.DistanceToDestination = &d
		resp.DistanceToDestinationText = fmt.Sprintf("残り %s", helper.FormatDistance(d))
	}
	return resp
}

// summarizeRoutes はルート一覧表示用の要約を作る
func summarizeRoutes(routes []model.Route, selectedID string) []model.RouteSummary {
	summaries := make([]model.RouteSummary, 0, len(routes))
	for _, r := range routes {
		summaries = append(summaries, model.RouteSummary{
			ID:            r.ID,
			Distance:      r.Distance,
			Duration:      r.Duration,
			DistanceText:  helper.FormatDistance(r.Distance),
			DurationText:  helper.FormatDuration(r.Duration),
			StepCount:     len(r.Steps),
			IsAlternative: r.IsAlternative,
			Selected:      r.ID == selectedID,
		})
	}
	return summaries
}
