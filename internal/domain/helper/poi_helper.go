package helper

import (
	"sort"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
)

// FilterNearbyPOIs は中心から半径内のPOIを近い順に返す
// categories が空の場合は全カテゴリが対象
func FilterNearbyPOIs(pois []model.POI, center model.Coordinates, radiusMeters float64, categories []model.POICategory) []model.NearbyPOI {
	catSet := make(map[model.POICategory]struct{}, len(categories))
	for _, c := range categories {
		catSet[c] = struct{}{}
	}

	var nearby []model.NearbyPOI
	for _, p := range pois {
		if len(catSet) > 0 {
			if _, ok := catSet[p.Category]; !ok {
				continue
			}
		}
		d := DistanceBetween(center, p.Coordinates)
		if radiusMeters > 0 && d > radiusMeters {
			continue
		}
		if p.Icon == "" {
			p.Icon = p.DisplayIcon()
		}
		nearby = append(nearby, model.NearbyPOI{
			POI:            p,
			DistanceMeters: d,
			DistanceText:   FormatDistance(d),
		})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceMeters < nearby[j].DistanceMeters
	})
	return nearby
}

// ParseCategories はクエリ文字列のカテゴリを検証して変換する
func ParseCategories(raw []string) ([]model.POICategory, error) {
	categories := make([]model.POICategory, 0, len(raw))
	for _, r := range raw {
		if r == "" {
			continue
		}
		c := model.POICategory(r)
		if !c.IsValid() {
			return nil, &model.ValidationError{Field: "category", Message: "未対応のカテゴリです: " + r}
		}
		categories = append(categories, c)
	}
	return categories, nil
}
