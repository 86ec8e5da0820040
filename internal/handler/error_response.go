package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/service"
	"github.com/Witalo2025/TUMAPS2/internal/usecase"
)

// classifyError はエラーをHTTPステータスとエラーコードに変換する
func classifyError(err error) (int, string) {
	var vErr *model.ValidationError
	var gwErr *model.GatewayError

	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, "invalid_parameter"
	case errors.Is(err, usecase.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, service.ErrSessionClosed):
		return http.StatusGone, "session_closed"
	case errors.Is(err, service.ErrRouteNotFound):
		return http.StatusNotFound, "route_not_found"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, service.ErrStaleSearch):
		return http.StatusConflict, "stale_search"
	case errors.Is(err, model.ErrRouteSearchNotFound):
		return http.StatusNotFound, "route_search_not_found"
	case errors.Is(err, model.ErrPOINotFound):
		return http.StatusNotFound, "poi_not_found"
	case errors.As(err, &gwErr):
		switch gwErr.Kind {
		case model.ErrorKindNoMatch:
			return http.StatusNotFound, string(model.ErrorKindNoMatch)
		case model.ErrorKindCredential:
			return http.StatusServiceUnavailable, string(model.ErrorKindCredential)
		default:
			return http.StatusBadGateway, string(model.ErrorKindTransport)
		}
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError はエラーレスポンスを返す。session が nil でなければ失敗後の状態も含める
func respondError(c *gin.Context, err error, session *model.SessionResponse) {
	status, code := classifyError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	body := gin.H{
		"error":   code,
		"message": err.Error(),
	}
	if session != nil {
		body["session"] = session
	}
	c.JSON(status, body)
}

func respondBadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   code,
		"message": message,
	})
}
