package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Witalo2025/TUMAPS2/internal/domain/helper"
	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/usecase"
)

// PlacesHandler ジオコーディング・POI・保存済み検索結果のHTTPハンドラー
type PlacesHandler struct {
	placesUseCase usecase.PlacesUseCase
}

// NewPlacesHandler PlacesHandlerの新しいインスタンスを作成
func NewPlacesHandler(placesUseCase usecase.PlacesUseCase) *PlacesHandler {
	return &PlacesHandler{
		placesUseCase: placesUseCase,
	}
}

// Geocode GET /geocode?q=
func (h *PlacesHandler) Geocode(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "missing_parameter", "q parameter is required")
		return
	}

	resp, err := h.placesUseCase.Geocode(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReverseGeocode GET /reverse-geocode?lng=&lat=
func (h *PlacesHandler) ReverseGeocode(c *gin.Context) {
	coords, ok := parseCoordinatesQuery(c)
	if !ok {
		return
	}

	resp, err := h.placesUseCase.ReverseGeocode(c.Request.Context(), coords)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetNearbyPOIs GET /pois?lng=&lat=&radius=&category=
func (h *PlacesHandler) GetNearbyPOIs(c *gin.Context) {
	coords, ok := parseCoordinatesQuery(c)
	if !ok {
		return
	}

	radius := 0.0
	if raw := c.Query("radius"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r < 0 {
			respondBadRequest(c, "invalid_parameter", "Invalid radius value")
			return
		}
		radius = r
	}

	categories, err := helper.ParseCategories(splitQuery(c.QueryArray("category")))
	if err != nil {
		respondError(c, err, nil)
		return
	}

	pois, err := h.placesUseCase.NearbyPOIs(c.Request.Context(), coords, radius, categories)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pois":  pois,
		"count": len(pois),
	})
}

// GetPOI GET /pois/:id
func (h *PlacesHandler) GetPOI(c *gin.Context) {
	poi, err := h.placesUseCase.GetPOI(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, poi)
}

// GetRouteSearch GET /route-searches/:id
func (h *PlacesHandler) GetRouteSearch(c *gin.Context) {
	search, err := h.placesUseCase.GetRouteSearch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, search)
}

// PreviewRoutes GET /routes/preview?origin=&destination=
func (h *PlacesHandler) PreviewRoutes(c *gin.Context) {
	origin, destination := c.Query("origin"), c.Query("destination")
	if origin == "" || destination == "" {
		respondBadRequest(c, "missing_parameter", "origin and destination parameters are required")
		return
	}

	resp, err := h.placesUseCase.PreviewRoutes(c.Request.Context(), origin, destination)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// parseCoordinatesQuery は lng / lat クエリを読み取る。失敗時はレスポンスを書いて false を返す
func parseCoordinatesQuery(c *gin.Context) (model.Coordinates, bool) {
	lngRaw, latRaw := c.Query("lng"), c.Query("lat")
	if lngRaw == "" || latRaw == "" {
		respondBadRequest(c, "missing_parameter", "lng and lat parameters are required")
		return model.Coordinates{}, false
	}

	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		respondBadRequest(c, "invalid_parameter", "Invalid lng value")
		return model.Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		respondBadRequest(c, "invalid_parameter", "Invalid lat value")
		return model.Coordinates{}, false
	}
	return model.Coordinates{Lng: lng, Lat: lat}, true
}
