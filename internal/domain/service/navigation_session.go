package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/repository"
)

var (
	ErrSessionClosed     = errors.New("セッションは終了しています")
	ErrStaleSearch       = errors.New("検索結果は破棄されました（停止または新しい検索が行われました）")
	ErrInvalidTransition = errors.New("現在の状態ではこの操作はできません")
	ErrRouteNotFound     = errors.New("指定されたルートは候補にありません")
)

// SessionController は1つのナビゲーションセッションの状態を所有する
// 状態の読み書きはロック内で行い、ネットワーク呼び出しはロックの外で行う
// 呼び出しから戻った時点で世代が変わっていれば、その結果は破棄する
type SessionController struct {
	mu           sync.Mutex
	id           string
	state        model.NavigationState
	reducer      *Reducer
	gateway      repository.RoutingGateway
	locations    LocationSource
	announcer    Announcer
	subscription Subscription
	generation   uint64
	closed       bool
}

// NewSessionController は新しいセッションを初期状態で作成
func NewSessionController(id string, gateway repository.RoutingGateway, locations LocationSource, announcer Announcer, config SessionConfig) *SessionController {
	return &SessionController{
		id:        id,
		state:     model.InitialNavigationState(),
		reducer:   NewReducer(config),
		gateway:   gateway,
		locations: locations,
		announcer: announcer,
	}
}

// ID セッションID
func (c *SessionController) ID() string {
	return c.id
}

// State 現在の状態のコピー
func (c *SessionController) State() model.NavigationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Search は2つの住所をジオコーディングし、ルート候補を取得する
// どちらかの住所が解決できない場合は idle に戻り、LastError にどちらが失敗したかを残す
func (c *SessionController) Search(ctx context.Context, originText, destinationText string) (model.NavigationState, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return model.NavigationState{}, ErrSessionClosed
	}
	if c.state.Phase == model.PhaseNavigating || c.state.Phase == model.PhaseSearching {
		st := c.state.Clone()
		c.mu.Unlock()
		return st, fmt.Errorf("%w: %s 中は検索できません", ErrInvalidTransition, st.Phase)
	}
	c.generation++
	gen := c.generation
	c.dispatch(SearchStarted{OriginText: originText, DestinationText: destinationText})
	if c.state.Phase != model.PhaseSearching {
		st := c.state.Clone()
		c.mu.Unlock()
		return st, &model.ValidationError{Field: st.LastError.Field, Message: st.LastError.Message}
	}
	c.mu.Unlock()

	log.Printf("🔍 [%s] 経路検索開始: %q → %q", c.id, originText, destinationText)

	origin, destination, field, err := c.geocodePair(ctx, originText, destinationText)
	if err != nil {
		log.Printf("⚠️ [%s] ジオコーディング失敗 (%s): %v", c.id, field, err)
		return c.finishSearch(gen, SearchFailed{Field: field, Err: err}, err)
	}

	if !c.isCurrent(gen) {
		log.Printf("🗑️ [%s] 古い検索のためルート取得を中止", c.id)
		return c.State(), ErrStaleSearch
	}

	routes, err := c.gateway.GetRoutes(ctx, origin, destination, true)
	if err != nil {
		log.Printf("⚠️ [%s] ルート取得失敗: %v", c.id, err)
		return c.finishSearch(gen, SearchFailed{Field: model.FieldRoutes, Err: err}, err)
	}

	log.Printf("✅ [%s] %d件のルート候補を取得", c.id, len(routes))
	return c.finishSearch(gen, SearchSucceeded{Origin: origin, Destination: destination, Routes: routes}, nil)
}

// geocodePair は出発地と目的地を並行してジオコーディングする
// 両方失敗した場合は出発地のエラーを優先する
func (c *SessionController) geocodePair(ctx context.Context, originText, destinationText string) (model.Coordinates, model.Coordinates, string, error) {
	type geocodeResult struct {
		coordinates model.Coordinates
		err         error
	}

	var wg sync.WaitGroup
	results := make([]geocodeResult, 2)
	for i, address := range []string{originText, destinationText} {
		wg.Add(1)
		go func(idx int, addr string) {
			defer wg.Done()
			coords, err := c.gateway.Geocode(ctx, addr)
			results[idx] = geocodeResult{coordinates: coords, err: err}
		}(i, address)
	}
	wg.Wait()

	if results[0].err != nil {
		return model.Coordinates{}, model.Coordinates{}, model.FieldOrigin, results[0].err
	}
	if results[1].err != nil {
		return model.Coordinates{}, model.Coordinates{}, model.FieldDestination, results[1].err
	}
	return results[0].coordinates, results[1].coordinates, "", nil
}

func (c *SessionController) finishSearch(gen uint64, event Event, cause error) (model.NavigationState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation {
		log.Printf("🗑️ [%s] 古い検索結果を破棄しました", c.id)
		return c.state.Clone(), ErrStaleSearch
	}

	c.dispatch(event)
	if cause != nil {
		return c.state.Clone(), cause
	}
	if c.state.Phase != model.PhaseRouteSelection {
		return c.state.Clone(), model.NewGatewayError("directions", model.ErrorKindNoMatch, nil)
	}
	return c.state.Clone(), nil
}

func (c *SessionController) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && gen == c.generation
}

// SelectRoute は候補の中からルートを選択する
func (c *SessionController) SelectRoute(routeID string) (model.NavigationState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require(model.PhaseRouteSelection); err != nil {
		return c.state.Clone(), err
	}
	found := false
	for _, r := range c.state.Routes {
		if r.ID == routeID {
			found = true
			break
		}
	}
	if !found {
		return c.state.Clone(), fmt.Errorf("%w: %s", ErrRouteNotFound, routeID)
	}

	c.dispatch(RouteSelected{RouteID: routeID})
	return c.state.Clone(), nil
}

// StartNavigation は選択中のルートで案内を開始し、位置情報の購読を始める
func (c *SessionController) StartNavigation() (model.NavigationState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require(model.PhaseRouteSelection); err != nil {
		return c.state.Clone(), err
	}
	c.dispatch(NavigationStarted{})
	log.Printf("🚗 [%s] 案内開始 (ルート: %s)", c.id, c.state.SelectedRouteID)
	return c.state.Clone(), nil
}

// StopNavigation は案内・検索を停止して初期状態に戻す。何度呼んでも同じ結果になる
func (c *SessionController) StopNavigation() (model.NavigationState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.state.Clone(), ErrSessionClosed
	}
	// 実行中の検索の結果を無効にする
	c.generation++
	c.dispatch(NavigationStopped{})
	log.Printf("🛑 [%s] 案内停止", c.id)
	return c.state.Clone(), nil
}

// AdvanceStep はステップを delta だけ進める（範囲外は端で止まる）
func (c *SessionController) AdvanceStep(delta int) (model.NavigationState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require(model.PhaseNavigating); err != nil {
		return c.state.Clone(), err
	}
	c.dispatch(StepAdvanced{Delta: delta})
	return c.state.Clone(), nil
}

// UpdateLocation は位置情報サンプルを反映する。案内中は到着判定を行う
func (c *SessionController) UpdateLocation(location model.Coordinates) (model.NavigationState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.state.Clone(), ErrSessionClosed
	}
	wasNavigating := c.state.Phase == model.PhaseNavigating
	c.dispatch(LocationUpdated{Location: location})
	if wasNavigating && c.state.LastOutcome == model.OutcomeArrived {
		log.Printf("🏁 [%s] 目的地に到着しました", c.id)
	}
	return c.state.Clone(), nil
}

// ToggleVoice 音声案内の切り替え
func (c *SessionController) ToggleVoice() (model.NavigationState, error) {
	return c.apply(VoiceToggled{})
}

// ToggleTheme 表示テーマの切り替え
func (c *SessionController) ToggleTheme() (model.NavigationState, error) {
	return c.apply(ThemeToggled{})
}

// Close はセッションを終了し、位置情報の購読を必ず解除する
func (c *SessionController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	c.releaseSubscription()
	log.Printf("👋 [%s] セッション終了", c.id)
}

func (c *SessionController) apply(event Event) (model.NavigationState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.state.Clone(), ErrSessionClosed
	}
	c.dispatch(event)
	return c.state.Clone(), nil
}

func (c *SessionController) require(phase model.Phase) error {
	if c.closed {
		return ErrSessionClosed
	}
	if c.state.Phase != phase {
		return fmt.Errorf("%w: 現在の状態は %s です", ErrInvalidTransition, c.state.Phase)
	}
	return nil
}

// dispatch はロックを保持した状態で呼ぶこと
func (c *SessionController) dispatch(event Event) {
	next, effects := c.reducer.Reduce(c.state, event)
	c.state = next
	c.runEffects(effects)
}

func (c *SessionController) runEffects(effects []Effect) {
	for _, effect := range effects {
		switch effect.Kind {
		case EffectSubscribeLocation:
			if c.subscription != nil || c.locations == nil {
				continue
			}
			sub, err := c.locations.Watch(c.onLocationSample)
			if err != nil {
				log.Printf("⚠️ [%s] 位置情報の購読に失敗: %v", c.id, err)
				continue
			}
			c.subscription = sub
		case EffectUnsubscribeLocation:
			c.releaseSubscription()
		case EffectAnnounce:
			if c.announcer != nil && effect.Text != "" {
				c.announcer.Announce(effect.Text)
			}
		}
	}
}

func (c *SessionController) releaseSubscription() {
	if c.subscription != nil {
		c.subscription.Cancel()
		c.subscription = nil
	}
}

func (c *SessionController) onLocationSample(location model.Coordinates) {
	if _, err := c.UpdateLocation(location); err != nil && !errors.Is(err, ErrSessionClosed) {
		log.Printf("⚠️ [%s] 位置情報の反映に失敗: %v", c.id, err)
	}
}
