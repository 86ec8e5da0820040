package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter は /api 以下のルーティングを設定したエンジンを返す
func NewRouter(engine *gin.Engine, navigation *NavigationHandler, places *PlacesHandler) *gin.Engine {
	api := engine.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "tumaps"})
	})

	api.GET("/geocode", places.Geocode)
	api.GET("/reverse-geocode", places.ReverseGeocode)
	api.GET("/pois", places.GetNearbyPOIs)
	api.GET("/pois/:id", places.GetPOI)
	api.GET("/route-searches/:id", places.GetRouteSearch)
	api.GET("/routes/preview", places.PreviewRoutes)

	sessions := api.Group("/sessions")
	sessions.POST("", navigation.CreateSession)
	sessions.GET("/:id", navigation.GetSession)
	sessions.DELETE("/:id", navigation.DeleteSession)
	sessions.POST("/:id/search", navigation.Search)
	sessions.POST("/:id/routes/:routeId/select", navigation.SelectRoute)
	sessions.POST("/:id/navigation/start", navigation.StartNavigation)
	sessions.POST("/:id/navigation/stop", navigation.StopNavigation)
	sessions.POST("/:id/navigation/steps", navigation.AdvanceStep)
	sessions.POST("/:id/location", navigation.ReportLocation)
	sessions.GET("/:id/location/name", navigation.GetLocationName)
	sessions.POST("/:id/voice/toggle", navigation.ToggleVoice)
	sessions.POST("/:id/theme/toggle", navigation.ToggleTheme)
	sessions.GET("/:id/announcements", navigation.GetAnnouncements)
	sessions.GET("/:id/map", navigation.GetMapLayers)
	sessions.GET("/:id/map-style", navigation.GetMapStyle)

	return engine
}
