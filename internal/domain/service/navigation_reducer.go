package service

import (
	"strings"

	"github.com/Witalo2025/TUMAPS2/internal/domain/helper"
	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

// Event はセッション状態を遷移させる入力
type Event interface {
	eventName() string
}

// SearchStarted 住所による検索の開始
type SearchStarted struct {
	OriginText      string
	DestinationText string
}

// SearchFailed ジオコーディングまたはルート取得の失敗
type SearchFailed struct {
	Field string
	Err   error
}

// SearchSucceeded 検索の完了（Routesが空の場合もある）
type SearchSucceeded struct {
	Origin      model.Coordinates
	Destination model.Coordinates
	Routes      []model.Route
}

// RouteSelected 候補からのルート選択
type RouteSelected struct {
	RouteID string
}

// NavigationStarted 案内開始
type NavigationStarted struct{}

// NavigationStopped 案内停止（全リセット）
type NavigationStopped struct{}

// LocationUpdated 端末の位置情報サンプル
type LocationUpdated struct {
	Location model.Coordinates
}

// StepAdvanced 手動でのステップ送り
type StepAdvanced struct {
	Delta int
}

// VoiceToggled 音声案内の切り替え
type VoiceToggled struct{}

// ThemeToggled 表示テーマの切り替え
type ThemeToggled struct{}

func (SearchStarted) eventName() string     { return "search_started" }
func (SearchFailed) eventName() string      { return "search_failed" }
func (SearchSucceeded) eventName() string   { return "search_succeeded" }
func (RouteSelected) eventName() string     { return "route_selected" }
func (NavigationStarted) eventName() string { return "navigation_started" }
func (NavigationStopped) eventName() string { return "navigation_stopped" }
func (LocationUpdated) eventName() string   { return "location_updated" }
func (StepAdvanced) eventName() string      { return "step_advanced" }
func (VoiceToggled) eventName() string      { return "voice_toggled" }
func (ThemeToggled) eventName() string      { return "theme_toggled" }

// EffectKind 状態遷移に伴う副作用の種類
type EffectKind int

const (
	EffectSubscribeLocation EffectKind = iota + 1
	EffectUnsubscribeLocation
	EffectAnnounce
)

// Effect はコントローラが実行する副作用
type Effect struct {
	Kind EffectKind
	Text string // EffectAnnounce の読み上げ文
}

// SessionConfig ナビゲーションの挙動設定
type SessionConfig struct {
	ArrivalThresholdMeters float64
	// AutoAdvanceSteps が true の場合、次の操作地点に近づいたらステップを自動で進める
	// false の場合はステップ送りを外部（UIや時間経過）に任せる
	AutoAdvanceSteps           bool
	StepAdvanceThresholdMeters float64
}

// DefaultSessionConfig 既定の設定（自動ステップ送りは無効）
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		ArrivalThresholdMeters:     model.DefaultArrivalThresholdMeters,
		AutoAdvanceSteps:           false,
		StepAdvanceThresholdMeters: model.DefaultStepAdvanceThresholdMeters,
	}
}

// Reducer は (state, event) -> (state, effects) の純粋な状態遷移
type Reducer struct {
	config SessionConfig
}

// NewReducer は新しいReducerを作成
func NewReducer(config SessionConfig) *Reducer {
	if config.ArrivalThresholdMeters <= 0 {
		config.ArrivalThresholdMeters = model.DefaultArrivalThresholdMeters
	}
	if config.StepAdvanceThresholdMeters <= 0 {
		config.StepAdvanceThresholdMeters = model.DefaultStepAdvanceThresholdMeters
	}
	return &Reducer{config: config}
}

// Reduce はイベントを適用した新しい状態と副作用を返す。引数の状態は変更しない
// 現在のフェーズで受け付けないイベントは無視して状態をそのまま返す
func (r *Reducer) Reduce(state model.NavigationState, event Event) (model.NavigationState, []Effect) {
	next := state.Clone()

	switch ev := event.(type) {
	case SearchStarted:
		return r.searchStarted(next, ev)

	case SearchFailed:
		if next.Phase != model.PhaseSearching {
			return next, nil
		}
		next.Phase = model.PhaseIdle
		next.Origin = nil
		next.Destination = nil
		next.Routes = []model.Route{}
		next.SelectedRouteID = ""
		next.LastError = sessionErrorFrom(ev.Field, ev.Err)
		return next, nil

	case SearchSucceeded:
		if next.Phase != model.PhaseSearching {
			return next, nil
		}
		origin, destination := ev.Origin, ev.Destination
		next.Origin = &origin
		next.Destination = &destination
		if len(ev.Routes) == 0 {
			next.Phase = model.PhaseIdle
			next.Routes = []model.Route{}
			next.SelectedRouteID = ""
			next.LastError = sessionErrorFrom(model.FieldRoutes, model.NewGatewayError("directions", model.ErrorKindNoMatch, nil))
			return next, nil
		}
		next.Routes = make([]model.Route, len(ev.Routes))
		copy(next.Routes, ev.Routes)
		next.SelectedRouteID = ev.Routes[0].ID
		next.Phase = model.PhaseRouteSelection
		next.LastError = nil
		return next, nil

	case RouteSelected:
		if next.Phase != model.PhaseRouteSelection {
			return next, nil
		}
		for _, route := range next.Routes {
			if route.ID == ev.RouteID {
				next.SelectedRouteID = ev.RouteID
				break
			}
		}
		return next, nil

	case NavigationStarted:
		route := next.SelectedRoute()
		if next.Phase != model.PhaseRouteSelection || route == nil {
			return next, nil
		}
		next.Phase = model.PhaseNavigating
		next.IsNavigating = true
		next.CurrentStepIndex = 0
		next.LastOutcome = model.OutcomeNone
		effects := []Effect{{Kind: EffectSubscribeLocation}}
		if next.VoiceEnabled && len(route.Steps) > 0 {
			effects = append(effects, Effect{Kind: EffectAnnounce, Text: route.Steps[0].Instruction})
		}
		return next, effects

	case LocationUpdated:
		return r.locationUpdated(next, ev)

	case StepAdvanced:
		route := next.SelectedRoute()
		if next.Phase != model.PhaseNavigating || route == nil || len(route.Steps) == 0 {
			return next, nil
		}
		index := next.CurrentStepIndex + ev.Delta
		if index < 0 {
			index = 0
		}
		if index > len(route.Steps)-1 {
			index = len(route.Steps) - 1
		}
		if index == next.CurrentStepIndex {
			return next, nil
		}
		next.CurrentStepIndex = index
		if next.VoiceEnabled {
			return next, []Effect{{Kind: EffectAnnounce, Text: route.Steps[index].Instruction}}
		}
		return next, nil

	case NavigationStopped:
		var effects []Effect
		if next.Phase == model.PhaseNavigating {
			effects = append(effects, Effect{Kind: EffectUnsubscribeLocation})
		}
		outcome := next.LastOutcome
		if next.Phase != model.PhaseIdle {
			outcome = model.OutcomeStopped
		}
		return resetState(next, outcome), effects

	case VoiceToggled:
		next.VoiceEnabled = !next.VoiceEnabled
		return next, nil

	case ThemeToggled:
		next.DarkMode = !next.DarkMode
		return next, nil
	}

	return next, nil
}

func (r *Reducer) searchStarted(next model.NavigationState, ev SearchStarted) (model.NavigationState, []Effect) {
	if next.Phase != model.PhaseIdle && next.Phase != model.PhaseRouteSelection {
		return next, nil
	}

	next.OriginInput = ev.OriginText
	next.DestinationInput = ev.DestinationText
	if strings.TrimSpace(ev.OriginText) == "" {
		next.LastError = &model.SessionError{Field: model.FieldOrigin, Kind: model.ErrorKindInvalidInput, Message: "出発地を入力してください"}
		return next, nil
	}
	if strings.TrimSpace(ev.DestinationText) == "" {
		next.LastError = &model.SessionError{Field: model.FieldDestination, Kind: model.ErrorKindInvalidInput, Message: "目的地を入力してください"}
		return next, nil
	}

	next.Phase = model.PhaseSearching
	next.Routes = []model.Route{}
	next.SelectedRouteID = ""
	next.LastError = nil
	next.LastOutcome = model.OutcomeNone
	return next, nil
}

func (r *Reducer) locationUpdated(next model.NavigationState, ev LocationUpdated) (model.NavigationState, []Effect) {
	location := ev.Location
	next.CurrentLocation = &location

	if next.Phase != model.PhaseNavigating || next.Destination == nil {
		return next, nil
	}

	// 目的地までの距離が唯一の到着判定
	if helper.DistanceBetween(location, *next.Destination) < r.config.ArrivalThresholdMeters {
		var effects []Effect
		if next.VoiceEnabled {
			effects = append(effects, Effect{Kind: EffectAnnounce, Text: model.ArrivalAnnouncement})
		}
		effects = append(effects, Effect{Kind: EffectUnsubscribeLocation})
		return resetState(next, model.OutcomeArrived), effects
	}

	if !r.config.AutoAdvanceSteps {
		return next, nil
	}

	route := next.SelectedRoute()
	if route == nil {
		return next, nil
	}
	nextIndex := next.CurrentStepIndex + 1
	if nextIndex >= len(route.Steps) || route.Steps[nextIndex].Maneuver.Location == nil {
		return next, nil
	}
	if helper.DistanceBetween(location, *route.Steps[nextIndex].Maneuver.Location) >= r.config.StepAdvanceThresholdMeters {
		return next, nil
	}
	next.CurrentStepIndex = nextIndex
	if next.VoiceEnabled {
		return next, []Effect{{Kind: EffectAnnounce, Text: route.Steps[nextIndex].Instruction}}
	}
	return next, nil
}

// resetState は初期状態に戻す。表示テーマ・音声設定・最後の現在地はセッションの設定として残す
func resetState(prev model.NavigationState, outcome model.Outcome) model.NavigationState {
	next := model.InitialNavigationState()
	next.DarkMode = prev.DarkMode
	next.VoiceEnabled = prev.VoiceEnabled
	next.CurrentLocation = prev.CurrentLocation
	next.LastOutcome = outcome
	return next
}

func sessionErrorFrom(field string, err error) *model.SessionError {
	kind := model.ErrorKindOf(err)
	message := ""
	switch kind {
	case model.ErrorKindNoMatch:
		switch field {
		case model.FieldOrigin:
			message = "出発地が見つかりませんでした"
		case model.FieldDestination:
			message = "目的地が見つかりませんでした"
		default:
			message = "ルートが見つかりませんでした"
		}
	case model.ErrorKindCredential:
		message = "地図サービスのアクセストークンが設定されていないか無効です"
	case model.ErrorKindInvalidInput:
		message = err.Error()
	default:
		message = "地図サービスとの通信に失敗しました。もう一度お試しください"
	}
	return &model.SessionError{Field: field, Kind: kind, Message: message}
}
