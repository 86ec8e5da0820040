package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Witalo2025/TUMAPS2/internal/config"
	domainrepo "github.com/Witalo2025/TUMAPS2/internal/domain/repository"
	"github.com/Witalo2025/TUMAPS2/internal/handler"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/database"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/firestore"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/maps"
	"github.com/Witalo2025/TUMAPS2/internal/repository"
	"github.com/Witalo2025/TUMAPS2/internal/usecase"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var closers []func() error

	// ルーティングAPI
	gateway := newRoutingGateway(cfg)

	// POIストア
	poiRepo, closePOI := newPOIsRepository(ctx, cfg)
	if closePOI != nil {
		closers = append(closers, closePOI)
	}

	// 検索結果キャッシュ
	searchRepo := repository.NewMemoryRouteSearchRepository()
	if cfg.FirestoreProjectID != "" {
		firestoreClient, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.GoogleCredentialsFile)
		if err != nil {
			log.Printf("⚠️ Firestore初期化失敗、メモリキャッシュを使用します: %v", err)
		} else {
			searchRepo = repository.NewFirestoreRouteSearchRepository(firestoreClient.GetClient())
			closers = append(closers, firestoreClient.Close)
		}
	}

	// ユースケース・ハンドラー
	store := usecase.NewSessionStore()
	styles := maps.NewStyleResolver(cfg.Mapbox.BaseURL, cfg.Mapbox.AccessToken)
	navigationUseCase := usecase.NewNavigationUseCase(store, gateway, poiRepo, searchRepo, styles, cfg.Session, cfg.RouteCacheTTLHours)
	placesUseCase := usecase.NewPlacesUseCase(gateway, poiRepo, searchRepo)

	router := handler.NewRouter(gin.Default(),
		handler.NewNavigationHandler(navigationUseCase),
		handler.NewPlacesHandler(placesUseCase),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 TUMAPS server starting on :%s (provider=%s, poi_store=%s)", cfg.Port, cfg.RoutingProvider, cfg.POIStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ サーバー起動失敗: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 シャットダウンします...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ サーバー停止エラー: %v", err)
	}

	store.CloseAll()
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("⚠️ クローズエラー: %v", err)
		}
	}
}

func newRoutingGateway(cfg *config.Config) domainrepo.RoutingGateway {
	if cfg.RoutingProvider == config.ProviderGoogle {
		return maps.NewGoogleGateway(cfg.Google)
	}
	return maps.NewMapboxGateway(cfg.Mapbox)
}

// newPOIsRepository は設定に応じたPOIストアを返す。接続できなければサンプルデータにフォールバックする
func newPOIsRepository(ctx context.Context, cfg *config.Config) (domainrepo.POIsRepository, func() error) {
	switch cfg.POIStore {
	case config.POIStorePostgres:
		client, err := database.NewPostgreSQLClient(ctx, database.PostgresConfig{
			DSN:         cfg.PostgresDSN,
			SupabaseURL: cfg.SupabaseURL,
			Password:    cfg.SupabaseDBPassword,
		})
		if err != nil {
			log.Printf("⚠️ PostgreSQL接続失敗、サンプルPOIを使用します: %v", err)
			break
		}
		return repository.NewPostgresPOIsRepository(client), client.Close
	case config.POIStoreSupabase:
		client, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			log.Printf("⚠️ Supabaseクライアント初期化失敗、サンプルPOIを使用します: %v", err)
			break
		}
		if err := client.HealthCheck(); err != nil {
			log.Printf("⚠️ Supabaseヘルスチェック失敗: %v", err)
		}
		return repository.NewSupabasePOIsRepository(client), nil
	}
	return repository.NewMemoryPOIsRepository(nil), nil
}
