package model

// POICategory POIのカテゴリ（固定の列挙）
type POICategory string

const (
	CategoryGasStation POICategory = "gas_station"
	CategoryHospital   POICategory = "hospital"
	CategoryPolice     POICategory = "police"
	CategoryParking    POICategory = "parking"
	CategoryRestaurant POICategory = "restaurant"
)

// categoryIcons カテゴリごとの表示アイコン
var categoryIcons = map[POICategory]string{
	CategoryGasStation: "⛽",
	CategoryHospital:   "🏥",
	CategoryPolice:     "🚓",
	CategoryParking:    "🅿️",
	CategoryRestaurant: "🍽️",
}

// IsValid 定義済みのカテゴリかチェック
func (c POICategory) IsValid() bool {
	_, ok := categoryIcons[c]
	return ok
}

// Icon カテゴリのデフォルトアイコン
func (c POICategory) Icon() string {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	return "📍"
}

// GetAllPOICategories 全カテゴリの一覧を取得する
func GetAllPOICategories() []POICategory {
	return []POICategory{
		CategoryGasStation,
		CategoryHospital,
		CategoryPolice,
		CategoryParking,
		CategoryRestaurant,
	}
}

// POI Point of Interest（読み取り専用の参照データ）
type POI struct {
	ID          string      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Category    POICategory `json:"category" db:"category"`
	Coordinates Coordinates `json:"coordinates"`
	Icon        string      `json:"icon" db:"icon"`
}

// DisplayIcon アイコン未設定ならカテゴリのアイコンを返す
func (p *POI) DisplayIcon() string {
	if p.Icon != "" {
		return p.Icon
	}
	return p.Category.Icon()
}

// NearbyPOI 検索地点からの距離付きPOI
type NearbyPOI struct {
	POI
	DistanceMeters float64 `json:"distance_meters"`
	DistanceText   string  `json:"distance_text"`
}
