package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/repository"
)

// MemoryRouteSearchRepository Firestoreが設定されていない場合の検索結果キャッシュ
type MemoryRouteSearchRepository struct {
	mu       sync.RWMutex
	searches map[string]memoryRouteSearch
	now      func() time.Time
}

type memoryRouteSearch struct {
	search   *model.RouteSearch
	expireAt time.Time
}

func NewMemoryRouteSearchRepository() repository.RouteSearchRepository {
	return newMemoryRouteSearchRepository(time.Now)
}

func newMemoryRouteSearchRepository(now func() time.Time) *MemoryRouteSearchRepository {
	return &MemoryRouteSearchRepository{
		searches: make(map[string]memoryRouteSearch),
		now:      now,
	}
}

func (r *MemoryRouteSearchRepository) Save(ctx context.Context, search *model.RouteSearch, ttlHours int) (*model.RouteSearch, error) {
	saved := prepareRouteSearch(search, r.now())

	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictExpiredLocked()
	r.searches[saved.ID] = memoryRouteSearch{
		search:   saved,
		expireAt: saved.CreatedAt.Add(time.Duration(ttlHours) * time.Hour),
	}
	return saved, nil
}

func (r *MemoryRouteSearchRepository) Get(ctx context.Context, id string) (*model.RouteSearch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.searches[id]
	if !ok || r.now().After(entry.expireAt) {
		return nil, fmt.Errorf("%w: %s", model.ErrRouteSearchNotFound, id)
	}
	found := *entry.search
	return &found, nil
}

func (r *MemoryRouteSearchRepository) evictExpiredLocked() {
	now := r.now()
	for id, entry := range r.searches {
		if now.After(entry.expireAt) {
			delete(r.searches, id)
		}
	}
}
