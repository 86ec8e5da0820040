package maps

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

const (
	lightStyleID = "mapbox/streets-v12"
	darkStyleID  = "mapbox/dark-v11"
)

// StyleResolver はテーマとアクセストークンから地図スタイルを選ぶ
type StyleResolver struct {
	baseURL     string
	accessToken string
}

// NewStyleResolver は新しいStyleResolverを作成
func NewStyleResolver(baseURL, accessToken string) *StyleResolver {
	if baseURL == "" {
		baseURL = DefaultMapboxBaseURL
	}
	return &StyleResolver{baseURL: strings.TrimRight(baseURL, "/"), accessToken: accessToken}
}

// Resolve はテーマに応じたスタイルを返す
// トークンがない場合もURLは返し、CredentialMissing で知らせる
func (s *StyleResolver) Resolve(darkMode bool) model.MapStyle {
	styleID := lightStyleID
	if darkMode {
		styleID = darkStyleID
	}
	params := url.Values{}
	params.Set("access_token", s.accessToken)

	return model.MapStyle{
		StyleID:           styleID,
		StyleURL:          fmt.Sprintf("%s/styles/v1/%s?%s", s.baseURL, styleID, params.Encode()),
		DarkMode:          darkMode,
		CredentialMissing: s.accessToken == "",
	}
}
