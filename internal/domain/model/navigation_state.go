package model

// Phase セッションの状態
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseSearching      Phase = "searching"
	PhaseRouteSelection Phase = "route_selection"
	PhaseNavigating     Phase = "navigating"
)

// Outcome 直近のナビゲーションの終わり方
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeArrived Outcome = "arrived"
	OutcomeStopped Outcome = "stopped"
)

// SessionError 画面に出すためのエラー情報（どの入力が何の理由で失敗したか）
type SessionError struct {
	Field   string    `json:"field"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// NavigationState セッションの唯一の状態
type NavigationState struct {
	Phase            Phase         `json:"phase"`
	OriginInput      string        `json:"origin_input"`
	DestinationInput string        `json:"destination_input"`
	Origin           *Coordinates  `json:"origin"`
	Destination      *Coordinates  `json:"destination"`
	CurrentLocation  *Coordinates  `json:"current_location"`
	Routes           []Route       `json:"routes"`
	SelectedRouteID  string        `json:"selected_route_id,omitempty"`
	IsNavigating     bool          `json:"is_navigating"`
	CurrentStepIndex int           `json:"current_step_index"`
	DarkMode         bool          `json:"dark_mode"`
	VoiceEnabled     bool          `json:"voice_enabled"`
	LastError        *SessionError `json:"last_error,omitempty"`
	LastOutcome      Outcome       `json:"last_outcome,omitempty"`
}

// InitialNavigationState セッション開始時の状態
func InitialNavigationState() NavigationState {
	return NavigationState{
		Phase:  PhaseIdle,
		Routes: []Route{},
	}
}

// SelectedRoute 選択中のルート（なければnil）
func (s *NavigationState) SelectedRoute() *Route {
	if s.SelectedRouteID == "" {
		return nil
	}
	for i := range s.Routes {
		if s.Routes[i].ID == s.SelectedRouteID {
			return &s.Routes[i]
		}
	}
	return nil
}

// CurrentStep 案内中のステップ（なければnil）
func (s *NavigationState) CurrentStep() *RouteStep {
	route := s.SelectedRoute()
	if route == nil || s.CurrentStepIndex < 0 || s.CurrentStepIndex >= len(route.Steps) {
		return nil
	}
	return &route.Steps[s.CurrentStepIndex]
}

// Clone スライスとポインタを複製したコピーを返す
func (s NavigationState) Clone() NavigationState {
	out := s
	out.Origin = cloneCoordinates(s.Origin)
	out.Destination = cloneCoordinates(s.Destination)
	out.CurrentLocation = cloneCoordinates(s.CurrentLocation)
	out.Routes = make([]Route, len(s.Routes))
	copy(out.Routes, s.Routes)
	if s.LastError != nil {
		e := *s.LastError
		out.LastError = &e
	}
	return out
}

func cloneCoordinates(c *Coordinates) *Coordinates {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
