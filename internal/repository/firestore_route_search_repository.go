package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/repository"
)

const routeSearchCollection = "routeSearches"

// FirestoreRouteSearchRepository Firestoreを使用した検索結果キャッシュ
// 期限切れのドキュメントは expireAt のTTLポリシーで削除される。削除前に読まれた場合も見つからない扱いにする
type FirestoreRouteSearchRepository struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreRouteSearchRepository 新しいFirestoreRouteSearchRepositoryインスタンスを作成
func NewFirestoreRouteSearchRepository(client *firestore.Client) repository.RouteSearchRepository {
	return &FirestoreRouteSearchRepository{
		client: client,
		now:    time.Now,
	}
}

// NewRouteSearchID 検索結果のIDを採番する
func NewRouteSearchID() string {
	return fmt.Sprintf("search_%s", uuid.New().String())
}

// Save は検索結果をTTL付きで保存する
func (r *FirestoreRouteSearchRepository) Save(ctx context.Context, search *model.RouteSearch, ttlHours int) (*model.RouteSearch, error) {
	saved := prepareRouteSearch(search, r.now())

	_, err := r.client.Collection(routeSearchCollection).Doc(saved.ID).Set(ctx, saved.ToFirestoreRouteSearch(ttlHours))
	if err != nil {
		log.Printf("❌ Failed to save route search %s: %v", saved.ID, err)
		return nil, fmt.Errorf("検索結果の保存に失敗しました: %w", err)
	}

	log.Printf("✅ Route search saved: %s (%d routes, expires in %d hours)", saved.ID, len(saved.Routes), ttlHours)
	return saved, nil
}

// Get は指定されたIDの検索結果を取得する
func (r *FirestoreRouteSearchRepository) Get(ctx context.Context, id string) (*model.RouteSearch, error) {
	doc, err := r.client.Collection(routeSearchCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", model.ErrRouteSearchNotFound, id)
		}
		return nil, fmt.Errorf("検索結果の取得に失敗しました: %w", err)
	}

	var data model.FirestoreRouteSearch
	if err := doc.DataTo(&data); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}
	if !data.ExpireAt.IsZero() && r.now().After(data.ExpireAt) {
		return nil, fmt.Errorf("%w: %s（有効期限切れ）", model.ErrRouteSearchNotFound, id)
	}

	log.Printf("✅ Route search retrieved: %s", id)
	return data.ToRouteSearch(id), nil
}

// prepareRouteSearch IDと作成日時を補った保存用のコピーを作る
func prepareRouteSearch(search *model.RouteSearch, now time.Time) *model.RouteSearch {
	saved := *search
	if saved.ID == "" {
		saved.ID = NewRouteSearchID()
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.Routes = append([]model.Route(nil), search.Routes...)
	return &saved
}
