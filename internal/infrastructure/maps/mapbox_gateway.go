package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

const (
	DefaultMapboxBaseURL = "https://api.mapbox.com"
	DefaultMapboxProfile = "mapbox/driving"
	DefaultMapboxDataset = "mapbox.places"
)

// MapboxConfig Mapbox APIの接続設定
type MapboxConfig struct {
	AccessToken string
	BaseURL     string
	Profile     string
	Dataset     string
	Timeout     time.Duration
}

// MapboxGateway はMapbox Directions / Geocoding APIを使用したRoutingGatewayの実装
type MapboxGateway struct {
	accessToken string
	baseURL     string
	profile     string
	dataset     string
	httpClient  *http.Client
}

// NewMapboxGateway は新しいゲートウェイを生成する
// アクセストークンが空でも生成でき、その場合は各呼び出しが credential エラーになる
func NewMapboxGateway(cfg MapboxConfig) *MapboxGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMapboxBaseURL
	}
	if cfg.Profile == "" {
		cfg.Profile = DefaultMapboxProfile
	}
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultMapboxDataset
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.AccessToken == "" {
		log.Printf("⚠️ MAPBOX_ACCESS_TOKEN が設定されていません。経路検索・ジオコーディングは失敗します")
	}

	return &MapboxGateway{
		accessToken: cfg.AccessToken,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		profile:     cfg.Profile,
		dataset:     cfg.Dataset,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Geocode は住所を座標に変換する（最初の候補の center）
func (m *MapboxGateway) Geocode(ctx context.Context, address string) (model.Coordinates, error) {
	const op = "geocode"

	address = strings.TrimSpace(address)
	if address == "" {
		return model.Coordinates{}, model.NewGatewayError(op, model.ErrorKindNoMatch, fmt.Errorf("住所が空です"))
	}

	reqURL := fmt.Sprintf("%s/geocoding/v5/%s/%s.json?%s", m.baseURL, m.dataset, url.PathEscape(address), m.credentialParams().Encode())

	var apiResp mapboxGeocodingResponse
	if err := m.getJSON(ctx, op, reqURL, &apiResp); err != nil {
		return model.Coordinates{}, err
	}

	if len(apiResp.Features) == 0 || len(apiResp.Features[0].Center) < 2 {
		return model.Coordinates{}, model.NewGatewayError(op, model.ErrorKindNoMatch, fmt.Errorf("%q に一致する場所がありません", address))
	}

	center := apiResp.Features[0].Center
	return model.Coordinates{Lng: center[0], Lat: center[1]}, nil
}

// ReverseGeocode は座標から最初の候補の地名を返す
func (m *MapboxGateway) ReverseGeocode(ctx context.Context, coordinates model.Coordinates) (string, error) {
	const op = "reverse_geocode"

	reqURL := fmt.Sprintf("%s/geocoding/v5/%s/%s.json?%s", m.baseURL, m.dataset, coordinates.PathKey(), m.credentialParams().Encode())

	var apiResp mapboxGeocodingResponse
	if err := m.getJSON(ctx, op, reqURL, &apiResp); err != nil {
		return "", err
	}

	if len(apiResp.Features) == 0 || apiResp.Features[0].PlaceName == "" {
		return "", model.NewGatewayError(op, model.ErrorKindNoMatch, fmt.Errorf("%s に該当する地名がありません", coordinates))
	}
	return apiResp.Features[0].PlaceName, nil
}

// GetRoutes は2地点間のルート候補を取得する
func (m *MapboxGateway) GetRoutes(ctx context.Context, origin, destination model.Coordinates, includeAlternatives bool) ([]model.Route, error) {
	const op = "directions"

	params := m.credentialParams()
	params.Set("alternatives", strconv.FormatBool(includeAlternatives))
	params.Set("geometries", "geojson")
	params.Set("steps", "true")

	reqURL := fmt.Sprintf("%s/directions/v5/%s/%s;%s?%s", m.baseURL, m.profile, origin.PathKey(), destination.PathKey(), params.Encode())

	var apiResp mapboxDirectionsResponse
	if err := m.getJSON(ctx, op, reqURL, &apiResp); err != nil {
		return nil, err
	}

	if apiResp.Code != "" && apiResp.Code != "Ok" {
		return nil, model.NewGatewayError(op, model.ErrorKindNoMatch, fmt.Errorf("code=%s %s", apiResp.Code, apiResp.Message))
	}

	routes := toRoutes(apiResp.Routes)
	if len(routes) == 0 {
		return nil, model.NewGatewayError(op, model.ErrorKindNoMatch, fmt.Errorf("APIから有効なルートが返されませんでした"))
	}
	return routes, nil
}

// toRoutes はレスポンスのルートをドメインモデルに変換する
// ステップのないルートは除外し、IDは残ったルートの順に振る
func toRoutes(apiRoutes []mapboxRoute) []model.Route {
	routes := make([]model.Route, 0, len(apiRoutes))
	for _, r := range apiRoutes {
		var steps []model.RouteStep
		if len(r.Legs) > 0 {
			steps = make([]model.RouteStep, 0, len(r.Legs[0].Steps))
			for _, s := range r.Legs[0].Steps {
				steps = append(steps, model.RouteStep{
					Instruction: s.Maneuver.Instruction,
					Distance:    s.Distance,
					Duration:    s.Duration,
					Maneuver: model.Maneuver{
						Type:     s.Maneuver.Type,
						Modifier: s.Maneuver.Modifier,
						Location: coordinatesFromPair(s.Maneuver.Location),
					},
				})
			}
		}
		if len(steps) == 0 {
			continue
		}

		geometry := make(orb.LineString, 0, len(r.Geometry.Coordinates))
		for _, pair := range r.Geometry.Coordinates {
			if len(pair) < 2 {
				continue
			}
			geometry = append(geometry, orb.Point{pair[0], pair[1]})
		}

		index := len(routes)
		routes = append(routes, model.Route{
			ID:            model.RouteID(index),
			Distance:      r.Distance,
			Duration:      r.Duration,
			Geometry:      geometry,
			Steps:         steps,
			IsAlternative: index > 0,
		})
	}
	return routes
}

func coordinatesFromPair(pair []float64) *model.Coordinates {
	if len(pair) < 2 {
		return nil
	}
	return &model.Coordinates{Lng: pair[0], Lat: pair[1]}
}

func (m *MapboxGateway) credentialParams() url.Values {
	params := url.Values{}
	params.Set("access_token", m.accessToken)
	return params
}

// getJSON は1回だけGETリクエストを送り、レスポンスをデコードする（リトライなし）
func (m *MapboxGateway) getJSON(ctx context.Context, op, reqURL string, out interface{}) error {
	if m.accessToken == "" {
		return model.NewGatewayError(op, model.ErrorKindCredential, nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.NewGatewayError(op, model.ErrorKindTransport, fmt.Errorf("リクエストの作成に失敗: %w", err))
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return model.NewGatewayError(op, model.ErrorKindTransport, fmt.Errorf("APIリクエストに失敗: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return model.NewGatewayError(op, model.ErrorKindCredential, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status))
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity:
		return model.NewGatewayError(op, model.ErrorKindNoMatch, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status))
	case resp.StatusCode != http.StatusOK:
		return model.NewGatewayError(op, model.ErrorKindTransport, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.NewGatewayError(op, model.ErrorKindTransport, fmt.Errorf("JSONのパースに失敗: %w", err))
	}
	return nil
}

// --- Mapbox APIのレスポンスをパースするための構造体 ---

type mapboxGeocodingResponse struct {
	Features []mapboxFeature `json:"features"`
}
type mapboxFeature struct {
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"` // [lng, lat]
}

type mapboxDirectionsResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message,omitempty"`
	Routes  []mapboxRoute `json:"routes"`
}
type mapboxRoute struct {
	Distance float64        `json:"distance"`
	Duration float64        `json:"duration"`
	Geometry mapboxGeometry `json:"geometry"`
	Legs     []mapboxLeg    `json:"legs"`
}
type mapboxGeometry struct {
	Coordinates [][]float64 `json:"coordinates"`
}
type mapboxLeg struct {
	Steps []mapboxStep `json:"steps"`
}
type mapboxStep struct {
	Distance float64        `json:"distance"`
	Duration float64        `json:"duration"`
	Maneuver mapboxManeuver `json:"maneuver"`
}
type mapboxManeuver struct {
	Instruction string    `json:"instruction"`
	Type        string    `json:"type"`
	Modifier    string    `json:"modifier,omitempty"`
	Location    []float64 `json:"location"`
}
