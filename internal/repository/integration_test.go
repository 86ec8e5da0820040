package repository

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/database"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/firestore"
)

// requireEnv は実環境の接続情報がなければテストをスキップする
func requireEnv(t *testing.T, names ...string) {
	t.Helper()
	// CI環境等では.envが存在しない場合があるため無視する
	_ = godotenv.Load("../../.env")

	for _, name := range names {
		if os.Getenv(name) == "" {
			t.Skipf("%s が設定されていないためスキップします", name)
		}
	}
}

func TestPostgresPOIsRepository_Integration(t *testing.T) {
	requireEnv(t, "SUPABASE_URL", "SUPABASE_DB_PASSWORD")
	ctx := context.Background()

	client, err := database.NewPostgreSQLClient(ctx, database.PostgresConfig{
		SupabaseURL: os.Getenv("SUPABASE_URL"),
		Password:    os.Getenv("SUPABASE_DB_PASSWORD"),
	})
	require.NoError(t, err)
	defer client.Close()

	repo := NewPostgresPOIsRepository(client)
	nearby, err := repo.FindNearby(ctx, umeda, 2000, []model.POICategory{model.CategoryHospital})
	require.NoError(t, err)
	for _, p := range nearby {
		assert.Equal(t, model.CategoryHospital, p.Category)
		assert.LessOrEqual(t, p.DistanceMeters, 2000.0)
	}
	t.Logf("🏥 %d件の病院が見つかりました", len(nearby))
}

func TestSupabasePOIsRepository_Integration(t *testing.T) {
	requireEnv(t, "SUPABASE_URL", "SUPABASE_ANON_KEY")

	client, err := database.NewSupabaseClient(os.Getenv("SUPABASE_URL"), os.Getenv("SUPABASE_ANON_KEY"))
	require.NoError(t, err)

	repo := NewSupabasePOIsRepository(client)
	pois, err := repo.List(context.Background())
	require.NoError(t, err)
	t.Logf("📍 %d件のPOIを取得しました", len(pois))
}

func TestFirestoreRouteSearchRepository_Integration(t *testing.T) {
	requireEnv(t, "FIRESTORE_PROJECT_ID")
	ctx := context.Background()

	client, err := firestore.NewFirestoreClient(ctx, os.Getenv("FIRESTORE_PROJECT_ID"), os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	require.NoError(t, err)
	defer client.Close()

	repo := NewFirestoreRouteSearchRepository(client.GetClient())
	saved, err := repo.Save(ctx, &model.RouteSearch{
		OriginText:      "梅田",
		DestinationText: "難波",
		Origin:          umeda,
		Destination:     model.Coordinates{Lng: 135.5023, Lat: 34.6937},
	}, 1)
	require.NoError(t, err)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "梅田", got.OriginText)

	_, err = repo.Get(ctx, NewRouteSearchID())
	assert.ErrorIs(t, err, model.ErrRouteSearchNotFound)
}
