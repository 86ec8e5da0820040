package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

func TestPlacesAPI(t *testing.T) {
	router := newTestRouter(t, "pk.test")

	t.Run("ヘルスチェック", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
	})

	t.Run("ジオコーディング", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/geocode?q=梅田", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp model.GeocodeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 135.4959, resp.Coordinates.Lng)
		assert.Equal(t, 34.7024, resp.Coordinates.Lat)
	})

	t.Run("ジオコーディングの候補なしは404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/geocode?q=nowhere", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "no_match")
	})

	t.Run("qがなければ400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/geocode", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("逆ジオコーディングは失敗しても地名を返す", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/reverse-geocode?lng=139.7&lat=35.6", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp model.ReverseGeocodeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, model.UnknownLocation, resp.PlaceName)
	})

	t.Run("座標が不正なら400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/reverse-geocode?lng=abc&lat=35.6", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/pois?lng=135.5&lat=95", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("周辺POIをカテゴリで絞り込む", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/pois?lng=135.4959&lat=34.7024&radius=2000&category=parking", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			POIs  []model.NearbyPOI `json:"pois"`
			Count int               `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotZero(t, resp.Count)
		for _, p := range resp.POIs {
			assert.Equal(t, model.CategoryParking, p.Category)
		}
	})

	t.Run("未知のカテゴリは400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/pois?lng=135.4959&lat=34.7024&category=casino", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("POI取得", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/pois/poi-parking-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "タイムズ 梅田第1")

		w = doJSON(t, router, http.MethodGet, "/api/pois/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "poi_not_found")
	})

	t.Run("保存されていない検索結果は404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/route-searches/search_missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "route_search_not_found")
	})

	t.Run("ルートのプレビュー", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/routes/preview?origin=梅田&destination=難波", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp model.RoutePreviewResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Routes, 2)
		assert.Equal(t, "route-0", resp.Routes[0].ID)

		w = doJSON(t, router, http.MethodGet, "/api/routes/preview?origin=梅田&destination=nowhere", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Nil(t, resp.Destination)
		assert.Empty(t, resp.Routes)

		w = doJSON(t, router, http.MethodGet, "/api/routes/preview?origin=梅田", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
