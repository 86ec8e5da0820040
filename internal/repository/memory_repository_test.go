package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

var umeda = model.Coordinates{Lng: 135.4959, Lat: 34.7024}

func TestMemoryPOIsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPOIsRepository(nil)

	t.Run("一覧はサンプルデータ", func(t *testing.T) {
		pois, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, pois, len(SamplePOIs()))
	})

	t.Run("IDで取得", func(t *testing.T) {
		poi, err := repo.GetByID(ctx, "poi-police-1")
		require.NoError(t, err)
		assert.Equal(t, "曽根崎警察署", poi.Name)
		assert.Equal(t, model.CategoryPolice.Icon(), poi.Icon)

		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, model.ErrPOINotFound)
	})

	t.Run("周辺検索は近い順でカテゴリを絞り込める", func(t *testing.T) {
		nearby, err := repo.FindNearby(ctx, umeda, 1000, []model.POICategory{model.CategoryParking, model.CategoryRestaurant})
		require.NoError(t, err)
		require.NotEmpty(t, nearby)
		for i, p := range nearby {
			assert.Contains(t, []model.POICategory{model.CategoryParking, model.CategoryRestaurant}, p.Category)
			assert.LessOrEqual(t, p.DistanceMeters, 1000.0)
			assert.NotEmpty(t, p.Icon)
			if i > 0 {
				assert.GreaterOrEqual(t, p.DistanceMeters, nearby[i-1].DistanceMeters)
			}
		}
	})
}

func TestMemoryRouteSearchRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	repo := newMemoryRouteSearchRepository(func() time.Time { return now })

	search := &model.RouteSearch{
		OriginText:      "梅田",
		DestinationText: "難波",
		Origin:          umeda,
		Destination:     model.Coordinates{Lng: 135.5023, Lat: 34.6937},
		Routes: []model.Route{{
			ID:       "route-0",
			Geometry: orb.LineString{{135.4959, 34.7024}, {135.5023, 34.6937}},
			Steps:    []model.RouteStep{{Instruction: "Head south"}},
		}},
	}

	saved, err := repo.Save(ctx, search, 2)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(saved.ID, "search_"))
	assert.Equal(t, now, saved.CreatedAt)
	assert.Empty(t, search.ID)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, err = repo.Get(ctx, "search_unknown")
	assert.ErrorIs(t, err, model.ErrRouteSearchNotFound)

	now = now.Add(3 * time.Hour)
	_, err = repo.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, model.ErrRouteSearchNotFound)
}

func TestParseGeoPoint(t *testing.T) {
	c, err := ParseGeoPoint(`{"type":"Point","coordinates":[135.4959,34.7024]}`)
	require.NoError(t, err)
	assert.Equal(t, umeda, c)

	_, err = ParseGeoPoint(`{"type":"Point","coordinates":[]}`)
	assert.Error(t, err)

	gp := CoordinatesToGeoPoint(umeda)
	assert.Equal(t, "Point", gp.Type)
	assert.Equal(t, []float64{135.4959, 34.7024}, gp.Coordinates)
}

func TestFirestoreRouteSearchConversion(t *testing.T) {
	created := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	location := model.Coordinates{Lng: 135.4990, Lat: 34.6980}
	search := &model.RouteSearch{
		ID:        "search_x",
		Origin:    umeda,
		CreatedAt: created,
		Routes: []model.Route{{
			ID:       "route-0",
			Distance: 1200,
			Geometry: orb.LineString{{135.4959, 34.7024}, {135.4990, 34.6980}},
			Steps:    []model.RouteStep{{Instruction: "Turn left", Maneuver: model.Maneuver{Type: "turn", Modifier: "left", Location: &location}}},
		}},
	}

	doc := search.ToFirestoreRouteSearch(2)
	assert.Equal(t, created.Add(2*time.Hour), doc.ExpireAt)
	assert.Equal(t, []model.Coordinates{umeda, location}, doc.Routes[0].Path)

	back := doc.ToRouteSearch("search_x")
	assert.Equal(t, search, back)
}
