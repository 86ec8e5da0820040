package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/service"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/maps"
	"github.com/Witalo2025/TUMAPS2/internal/repository"
	"github.com/Witalo2025/TUMAPS2/internal/usecase"
)

const fakeDirections = `{"code": "Ok", "routes": [
  {"distance": 1520, "duration": 312,
   "geometry": {"coordinates": [[135.4959, 34.7024], [135.5023, 34.6937]]},
   "legs": [{"steps": [
     {"distance": 1520, "duration": 312, "maneuver": {"instruction": "Head south on Midosuji", "type": "depart", "location": [135.4959, 34.7024]}},
     {"distance": 0, "duration": 0, "maneuver": {"instruction": "You have arrived", "type": "arrive", "location": [135.5023, 34.6937]}}
   ]}]},
  {"distance": 1890, "duration": 401,
   "geometry": {"coordinates": [[135.4959, 34.7024], [135.5100, 34.7000], [135.5023, 34.6937]]},
   "legs": [{"steps": [{"distance": 1890, "duration": 401, "maneuver": {"instruction": "Head east", "type": "depart"}}]}]}
]}`

// newFakeMapbox は Mapbox API と同じ形のレスポンスを返すテストサーバー
func newFakeMapbox(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/directions/"):
			fmt.Fprint(w, fakeDirections)
		case strings.HasSuffix(r.URL.Path, "/梅田.json"):
			fmt.Fprint(w, `{"features": [{"center": [135.4959, 34.7024], "place_name": "Umeda, Osaka"}]}`)
		case strings.HasSuffix(r.URL.Path, "/難波.json"):
			fmt.Fprint(w, `{"features": [{"center": [135.5023, 34.6937], "place_name": "Namba, Osaka"}]}`)
		case strings.HasSuffix(r.URL.Path, "/135.4959,34.7024.json"):
			fmt.Fprint(w, `{"features": [{"center": [135.4959, 34.7024], "place_name": "Umeda, Kita-ku, Osaka"}]}`)
		default:
			fmt.Fprint(w, `{"features": []}`)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(t *testing.T, token string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mapbox := newFakeMapbox(t)
	gateway := maps.NewMapboxGateway(maps.MapboxConfig{AccessToken: token, BaseURL: mapbox.URL})
	pois := repository.NewMemoryPOIsRepository(nil)
	searches := repository.NewMemoryRouteSearchRepository()

	navigation := usecase.NewNavigationUseCase(usecase.NewSessionStore(), gateway, pois, searches,
		maps.NewStyleResolver(mapbox.URL, token), service.DefaultSessionConfig(), 2)
	places := usecase.NewPlacesUseCase(gateway, pois, searches)

	return NewRouter(gin.New(), NewNavigationHandler(navigation), NewPlacesHandler(places))
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) model.SessionResponse {
	t.Helper()
	var resp model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestNavigationAPI_Journey(t *testing.T) {
	router := newTestRouter(t, "pk.test")

	w := doJSON(t, router, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeSession(t, w).SessionID
	require.NotEmpty(t, id)
	base := "/api/sessions/" + id

	w = doJSON(t, router, http.MethodPost, base+"/voice/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeSession(t, w).State.VoiceEnabled)

	w = doJSON(t, router, http.MethodPost, base+"/search", gin.H{"origin": "梅田", "destination": "難波"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	searched := decodeSession(t, w)
	assert.Equal(t, model.PhaseRouteSelection, searched.State.Phase)
	assert.Equal(t, "route-0", searched.State.SelectedRouteID)
	require.Len(t, searched.State.Routes, 2)
	assert.True(t, searched.State.Routes[1].IsAlternative)
	require.NotEmpty(t, searched.SearchID)

	w = doJSON(t, router, http.MethodGet, "/api/route-searches/"+searched.SearchID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/routes/route-1/select", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "route-1", decodeSession(t, w).State.SelectedRouteID)

	w = doJSON(t, router, http.MethodPost, base+"/routes/route-9/select", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/routes/route-0/select", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/navigation/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	started := decodeSession(t, w)
	assert.True(t, started.State.IsNavigating)
	require.NotNil(t, started.CurrentStep)
	assert.Equal(t, "Head south on Midosuji", started.CurrentStep.Instruction)

	w = doJSON(t, router, http.MethodPost, base+"/navigation/steps", gin.H{"delta": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeSession(t, w).State.CurrentStepIndex)

	w = doJSON(t, router, http.MethodGet, base+"/map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"FeatureCollection"`)

	w = doJSON(t, router, http.MethodPost, base+"/location", gin.H{"lng": 135.5023, "lat": 34.6938})
	require.Equal(t, http.StatusOK, w.Code)
	arrived := decodeSession(t, w)
	assert.Equal(t, model.PhaseIdle, arrived.State.Phase)
	assert.Equal(t, model.OutcomeArrived, arrived.State.LastOutcome)
	assert.Empty(t, arrived.State.Routes)

	w = doJSON(t, router, http.MethodGet, base+"/announcements", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var announcements struct {
		Announcements []string `json:"announcements"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &announcements))
	assert.Equal(t, []string{"Head south on Midosuji", "You have arrived", model.ArrivalAnnouncement}, announcements.Announcements)

	w = doJSON(t, router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNavigationAPI_Errors(t *testing.T) {
	router := newTestRouter(t, "pk.test")

	w := doJSON(t, router, http.MethodPost, "/api/sessions", nil)
	base := "/api/sessions/" + decodeSession(t, w).SessionID

	t.Run("目的地が見つからなければ404と失敗した入力", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, base+"/search", gin.H{"origin": "梅田", "destination": "存在しない場所"})
		require.Equal(t, http.StatusNotFound, w.Code)

		var body struct {
			Error   string                `json:"error"`
			Session model.SessionResponse `json:"session"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "no_match", body.Error)
		require.NotNil(t, body.Session.State.LastError)
		assert.Equal(t, model.FieldDestination, body.Session.State.LastError.Field)
	})

	t.Run("入力不足は400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, base+"/search", gin.H{"origin": "梅田"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, router, http.MethodPost, base+"/location", gin.H{"lng": 135.5})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ルート選択前の案内開始は409", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, base+"/navigation/start", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_transition")
	})

	t.Run("停止は何度でも成功する", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			w := doJSON(t, router, http.MethodPost, base+"/navigation/stop", nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, model.OutcomeStopped, decodeSession(t, w).State.LastOutcome)
		}
	})

	t.Run("存在しないセッションは404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/sessions/unknown/navigation/stop", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "session_not_found")
	})
}

func TestNavigationAPI_MissingCredential(t *testing.T) {
	router := newTestRouter(t, "")

	w := doJSON(t, router, http.MethodPost, "/api/sessions", nil)
	base := "/api/sessions/" + decodeSession(t, w).SessionID

	w = doJSON(t, router, http.MethodPost, base+"/search", gin.H{"origin": "梅田", "destination": "難波"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"credential"`)

	w = doJSON(t, router, http.MethodGet, base+"/map-style", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var style model.MapStyle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &style))
	assert.True(t, style.CredentialMissing)
}

func TestNavigationAPI_LocationName(t *testing.T) {
	router := newTestRouter(t, "pk.test")

	w := doJSON(t, router, http.MethodPost, "/api/sessions", nil)
	base := "/api/sessions/" + decodeSession(t, w).SessionID

	w = doJSON(t, router, http.MethodGet, base+"/location/name", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.UnknownLocation)

	w = doJSON(t, router, http.MethodPost, base+"/location", gin.H{"lng": 135.4959, "lat": 34.7024})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, base+"/location/name", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp model.ReverseGeocodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Umeda, Kita-ku, Osaka", resp.PlaceName)
}
