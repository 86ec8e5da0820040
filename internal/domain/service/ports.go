package service

import "github.com/Witalo2025/TUMAPS2/internal/domain/model"

// LocationSource は端末の位置情報の購読を提供する
type LocationSource interface {
	// Watch は位置情報のサンプルごとに onSample を呼ぶ購読を開始する
	Watch(onSample func(model.Coordinates)) (Subscription, error)
}

// Subscription は位置情報の購読。Cancel は何度呼んでもよい
type Subscription interface {
	Cancel()
}

// Announcer は音声案内の読み上げ文を受け取る
type Announcer interface {
	Announce(text string)
}
