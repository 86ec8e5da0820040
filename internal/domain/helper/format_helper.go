package helper

import (
	"fmt"
	"math"
)

// FormatDistance は距離を表示用の文字列にする
// 1000m未満は整数のm、それ以上は小数1桁のkm
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// FormatDuration は所要時間を表示用の文字列にする
// 1時間以上は "Hh Mmin"、それ未満は "M min"
func FormatDuration(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)

	if hours > 0 {
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	}
	return fmt.Sprintf("%d min", minutes)
}
