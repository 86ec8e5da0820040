package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/service"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/maps"
)

const (
	ProviderMapbox = "mapbox"
	ProviderGoogle = "google"

	POIStoreMemory   = "memory"
	POIStorePostgres = "postgres"
	POIStoreSupabase = "supabase"
)

// Config アプリケーション全体の設定（環境変数から読み込む）
type Config struct {
	Port string

	RoutingProvider string
	Mapbox          maps.MapboxConfig
	Google          maps.GoogleConfig

	POIStore           string
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseDBPassword string
	PostgresDSN        string

	FirestoreProjectID    string
	GoogleCredentialsFile string
	RouteCacheTTLHours    int

	Session service.SessionConfig
}

// Load は .env（存在すれば）と環境変数から設定を読み込む
// 認証情報がなくても起動は失敗させず、警告のみ出す
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ .envファイルが見つかりません。システムの環境変数を使用します")
	}
	return FromEnv(os.Getenv)
}

// FromEnv は getenv から設定を組み立てる
func FromEnv(getenv func(string) string) *Config {
	timeout := time.Duration(intOr(getenv, "HTTP_TIMEOUT_SECONDS", 10)) * time.Second

	cfg := &Config{
		Port:            stringOr(getenv, "PORT", "8080"),
		RoutingProvider: strings.ToLower(stringOr(getenv, "ROUTING_PROVIDER", ProviderMapbox)),
		Mapbox: maps.MapboxConfig{
			AccessToken: getenv("MAPBOX_ACCESS_TOKEN"),
			BaseURL:     stringOr(getenv, "MAPBOX_BASE_URL", maps.DefaultMapboxBaseURL),
			Profile:     stringOr(getenv, "MAPBOX_PROFILE", maps.DefaultMapboxProfile),
			Dataset:     stringOr(getenv, "MAPBOX_DATASET", maps.DefaultMapboxDataset),
			Timeout:     timeout,
		},
		Google: maps.GoogleConfig{
			APIKey: getenv("GOOGLE_MAPS_API_KEY"),
		},
		POIStore:              strings.ToLower(stringOr(getenv, "POI_STORE", POIStoreMemory)),
		SupabaseURL:           getenv("SUPABASE_URL"),
		SupabaseAnonKey:       getenv("SUPABASE_ANON_KEY"),
		SupabaseDBPassword:    getenv("SUPABASE_DB_PASSWORD"),
		PostgresDSN:           getenv("DATABASE_URL"),
		FirestoreProjectID:    getenv("FIRESTORE_PROJECT_ID"),
		GoogleCredentialsFile: getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		RouteCacheTTLHours:    intOr(getenv, "ROUTE_CACHE_TTL_HOURS", 2),
		Session: service.SessionConfig{
			ArrivalThresholdMeters:     floatOr(getenv, "ARRIVAL_THRESHOLD_METERS", model.DefaultArrivalThresholdMeters),
			AutoAdvanceSteps:           boolOr(getenv, "AUTO_ADVANCE_STEPS", false),
			StepAdvanceThresholdMeters: floatOr(getenv, "STEP_ADVANCE_THRESHOLD_METERS", model.DefaultStepAdvanceThresholdMeters),
		},
	}

	switch cfg.RoutingProvider {
	case ProviderMapbox, ProviderGoogle:
	default:
		log.Printf("⚠️ 未対応の ROUTING_PROVIDER=%q のため mapbox を使用します", cfg.RoutingProvider)
		cfg.RoutingProvider = ProviderMapbox
	}
	switch cfg.POIStore {
	case POIStoreMemory, POIStorePostgres, POIStoreSupabase:
	default:
		log.Printf("⚠️ 未対応の POI_STORE=%q のため memory を使用します", cfg.POIStore)
		cfg.POIStore = POIStoreMemory
	}
	if cfg.RouteCacheTTLHours <= 0 {
		cfg.RouteCacheTTLHours = 2
	}

	return cfg
}

func stringOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intOr(getenv func(string) string, key string, fallback int) int {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s=%q は整数ではありません。デフォルト値 %d を使用します", key, v, fallback)
		return fallback
	}
	return n
}

func floatOr(getenv func(string) string, key string, fallback float64) float64 {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("⚠️ %s=%q は正の数ではありません。デフォルト値 %.0f を使用します", key, v, fallback)
		return fallback
	}
	return f
}

func boolOr(getenv func(string) string, key string, fallback bool) bool {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("⚠️ %s=%q は真偽値ではありません。デフォルト値 %t を使用します", key, v, fallback)
		return fallback
	}
	return b
}
