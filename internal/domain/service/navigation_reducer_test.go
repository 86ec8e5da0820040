package service

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

var (
	testOrigin      = model.Coordinates{Lng: 135.4959, Lat: 34.7024}
	testDestination = model.Coordinates{Lng: 135.5023, Lat: 34.6937}
)

func testRoutes() []model.Route {
	return []model.Route{
		{
			ID:       "route-0",
			Distance: 1200,
			Duration: 300,
			Geometry: orb.LineString{testOrigin.Point(), testDestination.Point()},
			Steps: []model.RouteStep{
				{Instruction: "Head south", Distance: 600, Duration: 150, Maneuver: model.Maneuver{Type: "depart"}},
				{Instruction: "Turn left", Distance: 600, Duration: 150, Maneuver: model.Maneuver{Type: "turn", Modifier: "left", Location: &model.Coordinates{Lng: 135.4990, Lat: 34.6980}}},
				{Instruction: "Arrive", Maneuver: model.Maneuver{Type: "arrive", Location: &testDestination}},
			},
		},
		{
			ID:            "route-1",
			Distance:      1500,
			Duration:      360,
			Geometry:      orb.LineString{testOrigin.Point(), {135.50, 34.70}, testDestination.Point()},
			Steps:         []model.RouteStep{{Instruction: "Head east"}, {Instruction: "Arrive"}},
			IsAlternative: true,
		},
	}
}

// routeSelectionState は検索成功直後の状態を作る
func routeSelectionState(t *testing.T, r *Reducer) model.NavigationState {
	t.Helper()
	s, _ := r.Reduce(model.InitialNavigationState(), SearchStarted{OriginText: "梅田", DestinationText: "難波"})
	require.Equal(t, model.PhaseSearching, s.Phase)
	s, _ = r.Reduce(s, SearchSucceeded{Origin: testOrigin, Destination: testDestination, Routes: testRoutes()})
	require.Equal(t, model.PhaseRouteSelection, s.Phase)
	return s
}

func TestReducer_SearchFlow(t *testing.T) {
	r := NewReducer(DefaultSessionConfig())

	t.Run("検索成功で最初のルートが選択される", func(t *testing.T) {
		s := routeSelectionState(t, r)
		assert.Equal(t, "route-0", s.SelectedRouteID)
		assert.Len(t, s.Routes, 2)
		assert.Equal(t, &testOrigin, s.Origin)
		assert.Equal(t, &testDestination, s.Destination)
		assert.Nil(t, s.LastError)
	})

	t.Run("入力が空なら検索しない", func(t *testing.T) {
		s, effects := r.Reduce(model.InitialNavigationState(), SearchStarted{OriginText: "梅田", DestinationText: "  "})
		assert.Equal(t, model.PhaseIdle, s.Phase)
		assert.Empty(t, effects)
		require.NotNil(t, s.LastError)
		assert.Equal(t, model.FieldDestination, s.LastError.Field)
		assert.Equal(t, model.ErrorKindInvalidInput, s.LastError.Kind)
	})

	t.Run("ジオコーディング失敗はidleに戻り理由を残す", func(t *testing.T) {
		s, _ := r.Reduce(model.InitialNavigationState(), SearchStarted{OriginText: "xxxx", DestinationText: "難波"})
		s, _ = r.Reduce(s, SearchFailed{Field: model.FieldOrigin, Err: model.NewGatewayError("geocode", model.ErrorKindNoMatch, nil)})
		assert.Equal(t, model.PhaseIdle, s.Phase)
		assert.Empty(t, s.Routes)
		assert.Nil(t, s.Origin)
		require.NotNil(t, s.LastError)
		assert.Equal(t, model.FieldOrigin, s.LastError.Field)
		assert.Equal(t, model.ErrorKindNoMatch, s.LastError.Kind)
	})

	t.Run("ルート選択中の再検索が失敗したら前回の地点を消す", func(t *testing.T) {
		s := routeSelectionState(t, r)
		s, _ = r.Reduce(s, SearchStarted{OriginText: "梅田", DestinationText: "存在しない場所"})
		require.Equal(t, model.PhaseSearching, s.Phase)
		s, _ = r.Reduce(s, SearchFailed{Field: model.FieldDestination, Err: model.NewGatewayError("geocode", model.ErrorKindNoMatch, nil)})
		assert.Equal(t, model.PhaseIdle, s.Phase)
		assert.Nil(t, s.Origin)
		assert.Nil(t, s.Destination)
		assert.Empty(t, s.Routes)
		assert.Empty(t, s.SelectedRouteID)
	})

	t.Run("ルートが0件ならidleでno_match", func(t *testing.T) {
		s, _ := r.Reduce(model.InitialNavigationState(), SearchStarted{OriginText: "梅田", DestinationText: "難波"})
		s, _ = r.Reduce(s, SearchSucceeded{Origin: testOrigin, Destination: testDestination})
		assert.Equal(t, model.PhaseIdle, s.Phase)
		require.NotNil(t, s.LastError)
		assert.Equal(t, model.FieldRoutes, s.LastError.Field)
		assert.Equal(t, model.ErrorKindNoMatch, s.LastError.Kind)
	})

	t.Run("検索中でなければ結果は無視される", func(t *testing.T) {
		s, _ := r.Reduce(model.InitialNavigationState(), SearchSucceeded{Origin: testOrigin, Destination: testDestination, Routes: testRoutes()})
		assert.Equal(t, model.InitialNavigationState(), s)
	})
}

func TestReducer_RouteSelection(t *testing.T) {
	r := NewReducer(DefaultSessionConfig())
	s := routeSelectionState(t, r)

	next, _ := r.Reduce(s, RouteSelected{RouteID: "route-1"})
	assert.Equal(t, "route-1", next.SelectedRouteID)

	// 選択以外は変わらない
	expected := s.Clone()
	expected.SelectedRouteID = "route-1"
	assert.Equal(t, expected, next)

	unknown, _ := r.Reduce(next, RouteSelected{RouteID: "route-9"})
	assert.Equal(t, "route-1", unknown.SelectedRouteID)
}

func TestReducer_Navigation(t *testing.T) {
	r := NewReducer(DefaultSessionConfig())

	t.Run("案内開始で購読と最初の読み上げ", func(t *testing.T) {
		s := routeSelectionState(t, r)
		s.VoiceEnabled = true
		s, effects := r.Reduce(s, NavigationStarted{})
		assert.Equal(t, model.PhaseNavigating, s.Phase)
		assert.True(t, s.IsNavigating)
		assert.Equal(t, 0, s.CurrentStepIndex)
		assert.Equal(t, []Effect{
			{Kind: EffectSubscribeLocation},
			{Kind: EffectAnnounce, Text: "Head south"},
		}, effects)
	})

	t.Run("音声オフなら読み上げなし", func(t *testing.T) {
		s := routeSelectionState(t, r)
		_, effects := r.Reduce(s, NavigationStarted{})
		assert.Equal(t, []Effect{{Kind: EffectSubscribeLocation}}, effects)
	})

	t.Run("目的地から離れていれば案内継続、ステップは進まない", func(t *testing.T) {
		s := routeSelectionState(t, r)
		s, _ = r.Reduce(s, NavigationStarted{})
		far := model.Coordinates{Lng: 135.4990, Lat: 34.6980}
		s, effects := r.Reduce(s, LocationUpdated{Location: far})
		assert.Equal(t, model.PhaseNavigating, s.Phase)
		assert.Equal(t, 0, s.CurrentStepIndex)
		assert.Equal(t, &far, s.CurrentLocation)
		assert.Empty(t, effects)
	})

	t.Run("50m以内で到着し初期状態に戻る", func(t *testing.T) {
		s := routeSelectionState(t, r)
		s.VoiceEnabled = true
		s.DarkMode = true
		s, _ = r.Reduce(s, NavigationStarted{})
		near := model.Coordinates{Lng: testDestination.Lng + 0.0002, Lat: testDestination.Lat}
		s, effects := r.Reduce(s, LocationUpdated{Location: near})

		expected := model.InitialNavigationState()
		expected.VoiceEnabled = true
		expected.DarkMode = true
		expected.CurrentLocation = &near
		expected.LastOutcome = model.OutcomeArrived
		assert.Equal(t, expected, s)
		assert.Equal(t, []Effect{
			{Kind: EffectAnnounce, Text: model.ArrivalAnnouncement},
			{Kind: EffectUnsubscribeLocation},
		}, effects)
	})

	t.Run("手動ステップ送りは範囲内に収まる", func(t *testing.T) {
		s := routeSelectionState(t, r)
		s, _ = r.Reduce(s, NavigationStarted{})
		s, _ = r.Reduce(s, StepAdvanced{Delta: 1})
		assert.Equal(t, 1, s.CurrentStepIndex)
		s, _ = r.Reduce(s, StepAdvanced{Delta: 10})
		assert.Equal(t, 2, s.CurrentStepIndex)
		s, _ = r.Reduce(s, StepAdvanced{Delta: -10})
		assert.Equal(t, 0, s.CurrentStepIndex)
	})
}

func TestReducer_AutoAdvance(t *testing.T) {
	config := DefaultSessionConfig()
	config.AutoAdvanceSteps = true
	r := NewReducer(config)

	s := routeSelectionState(t, r)
	s.VoiceEnabled = true
	s, _ = r.Reduce(s, NavigationStarted{})

	atTurn := model.Coordinates{Lng: 135.4990, Lat: 34.6981}
	s, effects := r.Reduce(s, LocationUpdated{Location: atTurn})
	assert.Equal(t, 1, s.CurrentStepIndex)
	assert.Equal(t, []Effect{{Kind: EffectAnnounce, Text: "Turn left"}}, effects)
}

func TestReducer_Stop(t *testing.T) {
	r := NewReducer(DefaultSessionConfig())
	location := model.Coordinates{Lng: 135.49, Lat: 34.70}

	searching, _ := r.Reduce(model.InitialNavigationState(), SearchStarted{OriginText: "梅田", DestinationText: "難波"})
	selection := routeSelectionState(t, r)
	navigating, _ := r.Reduce(selection, NavigationStarted{})
	navigating, _ = r.Reduce(navigating, LocationUpdated{Location: location})

	expected := model.InitialNavigationState()
	expected.LastOutcome = model.OutcomeStopped

	for name, s := range map[string]model.NavigationState{
		"searching":       searching,
		"route_selection": selection,
	} {
		t.Run(name+"から停止", func(t *testing.T) {
			got, effects := r.Reduce(s, NavigationStopped{})
			assert.Equal(t, expected, got)
			assert.Empty(t, effects)
		})
	}

	t.Run("navigatingから停止で購読解除", func(t *testing.T) {
		got, effects := r.Reduce(navigating, NavigationStopped{})
		withLocation := expected.Clone()
		withLocation.CurrentLocation = &location
		assert.Equal(t, withLocation, got)
		assert.Equal(t, []Effect{{Kind: EffectUnsubscribeLocation}}, effects)

		again, effects := r.Reduce(got, NavigationStopped{})
		assert.Equal(t, got, again)
		assert.Empty(t, effects)
	})
}

func TestReducer_Toggles(t *testing.T) {
	r := NewReducer(DefaultSessionConfig())
	s, _ := r.Reduce(model.InitialNavigationState(), VoiceToggled{})
	s, _ = r.Reduce(s, ThemeToggled{})
	assert.True(t, s.VoiceEnabled)
	assert.True(t, s.DarkMode)
	s, _ = r.Reduce(s, ThemeToggled{})
	assert.False(t, s.DarkMode)
}
