package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Witalo2025/TUMAPS2/internal/domain/helper"
	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/usecase"
)

// NavigationHandler ナビゲーションセッションに関するHTTPハンドラー
type NavigationHandler struct {
	navigationUseCase usecase.NavigationUseCase
}

// NewNavigationHandler NavigationHandlerの新しいインスタンスを作成
func NewNavigationHandler(navigationUseCase usecase.NavigationUseCase) *NavigationHandler {
	return &NavigationHandler{
		navigationUseCase: navigationUseCase,
	}
}

// CreateSession POST /sessions
func (h *NavigationHandler) CreateSession(c *gin.Context) {
	resp, err := h.navigationUseCase.CreateSession(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSession GET /sessions/:id
func (h *NavigationHandler) GetSession(c *gin.Context) {
	resp, err := h.navigationUseCase.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteSession DELETE /sessions/:id
func (h *NavigationHandler) DeleteSession(c *gin.Context) {
	if err := h.navigationUseCase.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search POST /sessions/:id/search
func (h *NavigationHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid_request", "origin と destination を指定してください: "+err.Error())
		return
	}

	resp, err := h.navigationUseCase.Search(c.Request.Context(), c.Param("id"), &req)
	h.respondSession(c, resp, err)
}

// SelectRoute POST /sessions/:id/routes/:routeId/select
func (h *NavigationHandler) SelectRoute(c *gin.Context) {
	resp, err := h.navigationUseCase.SelectRoute(c.Request.Context(), c.Param("id"), c.Param("routeId"))
	h.respondSession(c, resp, err)
}

// StartNavigation POST /sessions/:id/navigation/start
func (h *NavigationHandler) StartNavigation(c *gin.Context) {
	resp, err := h.navigationUseCase.StartNavigation(c.Request.Context(), c.Param("id"))
	h.respondSession(c, resp, err)
}

// StopNavigation POST /sessions/:id/navigation/stop
func (h *NavigationHandler) StopNavigation(c *gin.Context) {
	resp, err := h.navigationUseCase.StopNavigation(c.Request.Context(), c.Param("id"))
	h.respondSession(c, resp, err)
}

// AdvanceStep POST /sessions/:id/navigation/steps
func (h *NavigationHandler) AdvanceStep(c *gin.Context) {
	req := model.StepRequest{Delta: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid_request", "Invalid JSON format: "+err.Error())
			return
		}
	}

	resp, err := h.navigationUseCase.AdvanceStep(c.Request.Context(), c.Param("id"), req.Delta)
	h.respondSession(c, resp, err)
}

// ReportLocation POST /sessions/:id/location
func (h *NavigationHandler) ReportLocation(c *gin.Context) {
	var req model.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid_request", "lng と lat を指定してください: "+err.Error())
		return
	}

	resp, err := h.navigationUseCase.ReportLocation(c.Request.Context(), c.Param("id"), req.ToCoordinates())
	h.respondSession(c, resp, err)
}

// GetLocationName GET /sessions/:id/location/name
func (h *NavigationHandler) GetLocationName(c *gin.Context) {
	resp, err := h.navigationUseCase.LocationName(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ToggleVoice POST /sessions/:id/voice/toggle
func (h *NavigationHandler) ToggleVoice(c *gin.Context) {
	resp, err := h.navigationUseCase.ToggleVoice(c.Request.Context(), c.Param("id"))
	h.respondSession(c, resp, err)
}

// ToggleTheme POST /sessions/:id/theme/toggle
func (h *NavigationHandler) ToggleTheme(c *gin.Context) {
	resp, err := h.navigationUseCase.ToggleTheme(c.Request.Context(), c.Param("id"))
	h.respondSession(c, resp, err)
}

// GetAnnouncements GET /sessions/:id/announcements
// 取得した読み上げ文はキューから取り除かれる
func (h *NavigationHandler) GetAnnouncements(c *gin.Context) {
	texts, err := h.navigationUseCase.DrainAnnouncements(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": texts})
}

// GetMapLayers GET /sessions/:id/map?category=hospital,parking
func (h *NavigationHandler) GetMapLayers(c *gin.Context) {
	categories, err := helper.ParseCategories(splitQuery(c.QueryArray("category")))
	if err != nil {
		respondError(c, err, nil)
		return
	}

	resp, err := h.navigationUseCase.MapLayers(c.Request.Context(), c.Param("id"), categories)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetMapStyle GET /sessions/:id/map-style
func (h *NavigationHandler) GetMapStyle(c *gin.Context) {
	resp, err := h.navigationUseCase.MapStyle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NavigationHandler) respondSession(c *gin.Context, resp *model.SessionResponse, err error) {
	if err != nil {
		respondError(c, err, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// splitQuery は ?category=a,b と ?category=a&category=b の両方を受け付ける
func splitQuery(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
