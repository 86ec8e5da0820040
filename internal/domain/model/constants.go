package model

// ナビゲーションの既定値
const (
	DefaultArrivalThresholdMeters     = 50.0
	DefaultStepAdvanceThresholdMeters = 30.0
)

// UnknownLocation 逆ジオコーディングに失敗した場合の表示名
const UnknownLocation = "Unknown location"

// ArrivalAnnouncement 到着時の読み上げ文
const ArrivalAnnouncement = "You have arrived at your destination"

// SessionError のフィールド名
const (
	FieldOrigin      = "origin"
	FieldDestination = "destination"
	FieldRoutes      = "routes"
)
