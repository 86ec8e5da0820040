package maps

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/paulmach/orb"
	"golang.org/x/net/html"
	gmaps "googlemaps.github.io/maps"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

// GoogleConfig Google Maps Platformの接続設定
type GoogleConfig struct {
	APIKey  string
	BaseURL string
}

// GoogleGateway はGoogle Maps Directions / Geocoding APIを使用したRoutingGatewayの実装
// ROUTING_PROVIDER=google のときに使用する
type GoogleGateway struct {
	client *gmaps.Client
}

// NewGoogleGateway は新しいゲートウェイを生成する
// APIキーがない、またはクライアントが作れない場合も生成はでき、各呼び出しが credential エラーになる
func NewGoogleGateway(cfg GoogleConfig) *GoogleGateway {
	if cfg.APIKey == "" {
		log.Printf("⚠️ GOOGLE_MAPS_API_KEY が設定されていません。経路検索・ジオコーディングは失敗します")
		return &GoogleGateway{}
	}

	opts := []gmaps.ClientOption{gmaps.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, gmaps.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}
	client, err := gmaps.NewClient(opts...)
	if err != nil {
		log.Printf("⚠️ Google Mapsクライアントの作成に失敗しました: %v", err)
		return &GoogleGateway{}
	}
	return &GoogleGateway{client: client}
}

// Geocode は住所を座標に変換する（最初の候補）
func (g *GoogleGateway) Geocode(ctx context.Context, address string) (model.Coordinates, error) {
	const op = "geocode"
	if g.client == nil {
		return model.Coordinates{}, model.NewGatewayError(op, model.ErrorKindCredential, nil)
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return model.Coordinates{}, model.NewGatewayError(op, model.ErrorKindNoMatch, fmt.Errorf("住所が空です"))
	}

	results, err := g.client.Geocode(ctx, &gmaps.GeocodingRequest{Address: address})
	if err != nil {
		return model.Coordinates{}, classifyGoogleError(op, err)
	}
	if len(results) == 0 {
		return model.Coordinates{}, model.NewGatewayError(op, model.ErrorKindNoMatch, fmt.Errorf("%q に一致する場所がありません", address))
	}

	location := results[0].Geometry.Location
	return model.Coordinates{Lng: location.Lng, Lat: location.Lat}, nil
}

// ReverseGeocode は座標から最初の候補の住所を返す
func (g *GoogleGateway) ReverseGeocode(ctx context.Context, coordinates model.Coordinates) (string, error) {
	const op = "reverse_geocode"
	if g.client == nil {
		return "", model.NewGatewayError(op, model.ErrorKindCredential, nil)
	}

	results, err := g.client.ReverseGeocode(ctx, &gmaps.GeocodingRequest{
		LatLng: &gmaps.LatLng{Lat: coordinates.Lat, Lng: coordinates.Lng},
	})
	if err != nil {
		return "", classifyGoogleError(op, err)
	}
	if len(results) == 0 || results[0].FormattedAddress == "" {
		return "", model.NewGatewayError(op, model.ErrorKindNoMatch, fmt.Errorf("%s に該当する地名がありません", coordinates))
	}
	return results[0].FormattedAddress, nil
}

// GetRoutes は2地点間の車のルート候補を取得する
func (g *GoogleGateway) GetRoutes(ctx context.Context, origin, destination model.Coordinates, includeAlternatives bool) ([]model.Route, error) {
	const op = "directions"
	if g.client == nil {
		return nil, model.NewGatewayError(op, model.ErrorKindCredential, nil)
	}

	apiRoutes, _, err := g.client.Directions(ctx, &gmaps.DirectionsRequest{
		Origin:       latLngString(origin),
		Destination:  latLngString(destination),
		Mode:         gmaps.TravelModeDriving,
		Alternatives: includeAlternatives,
	})
	if err != nil {
		return nil, classifyGoogleError(op, err)
	}

	routes := googleRoutesToModel(apiRoutes)
	if len(routes) == 0 {
		return nil, model.NewGatewayError(op, model.ErrorKindNoMatch, fmt.Errorf("APIから有効なルートが返されませんでした"))
	}
	return routes, nil
}

// googleRoutesToModel はDirections APIのルートをドメインモデルに変換する
// 最初のレグのみ使用し、ステップのないルートは除外する
func googleRoutesToModel(apiRoutes []gmaps.Route) []model.Route {
	routes := make([]model.Route, 0, len(apiRoutes))
	for _, r := range apiRoutes {
		if len(r.Legs) == 0 || r.Legs[0] == nil || len(r.Legs[0].Steps) == 0 {
			continue
		}
		leg := r.Legs[0]

		steps := make([]model.RouteStep, 0, len(leg.Steps)+1)
		for i, s := range leg.Steps {
			if s == nil {
				continue
			}
			maneuverType, modifier := splitGoogleManeuver(s.Maneuver, i == 0)
			location := model.Coordinates{Lng: s.StartLocation.Lng, Lat: s.StartLocation.Lat}
			steps = append(steps, model.RouteStep{
				Instruction: stripHTML(s.HTMLInstructions),
				Distance:    float64(s.Distance.Meters),
				Duration:    s.Duration.Seconds(),
				Maneuver: model.Maneuver{
					Type:     maneuverType,
					Modifier: modifier,
					Location: &location,
				},
			})
		}
		end := model.Coordinates{Lng: leg.EndLocation.Lng, Lat: leg.EndLocation.Lat}
		steps = append(steps, model.RouteStep{
			Instruction: arrivalInstruction(leg.EndAddress),
			Maneuver:    model.Maneuver{Type: "arrive", Location: &end},
		})

		geometry := orb.LineString{}
		if path, err := gmaps.DecodePolyline(r.OverviewPolyline.Points); err == nil {
			geometry = make(orb.LineString, 0, len(path))
			for _, p := range path {
				geometry = append(geometry, orb.Point{p.Lng, p.Lat})
			}
		}

		index := len(routes)
		routes = append(routes, model.Route{
			ID:            model.RouteID(index),
			Distance:      float64(leg.Distance.Meters),
			Duration:      leg.Duration.Seconds(),
			Geometry:      geometry,
			Steps:         steps,
			IsAlternative: index > 0,
		})
	}
	return routes
}

// splitGoogleManeuver は "turn-slight-left" のような値を type と modifier に分ける
func splitGoogleManeuver(maneuver string, first bool) (string, string) {
	if maneuver == "" {
		if first {
			return "depart", ""
		}
		return "continue", ""
	}
	parts := strings.SplitN(maneuver, "-", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.ReplaceAll(parts[1], "-", " ")
}

func arrivalInstruction(address string) string {
	if address == "" {
		return "Arrive at your destination"
	}
	return "Arrive at " + address
}

// classifyGoogleError はクライアントのエラーを種類付きのエラーに変換する
// クライアントは "maps: ZERO_RESULTS - ..." の形式でステータスを返す
func classifyGoogleError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return model.NewGatewayError(op, model.ErrorKindTransport, err)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "ZERO_RESULTS"), strings.Contains(msg, "NOT_FOUND"):
		return model.NewGatewayError(op, model.ErrorKindNoMatch, err)
	case strings.Contains(msg, "REQUEST_DENIED"):
		return model.NewGatewayError(op, model.ErrorKindCredential, err)
	default:
		return model.NewGatewayError(op, model.ErrorKindTransport, err)
	}
}

func latLngString(c model.Coordinates) string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lng)
}

// blockTags は前後の文を区切るタグ（<div> の補足案内など）
var blockTags = map[string]bool{"div": true, "br": true, "p": true, "li": true}

// stripHTML は案内文からHTMLタグを取り除き、実体参照を戻す
func stripHTML(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); blockTags[string(name)] {
				b.WriteByte(' ')
			}
		}
	}
}
