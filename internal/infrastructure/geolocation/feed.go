package geolocation

import (
	"sync"

	"github.com/Witalo2025/TUMAPS2/internal/domain/model"
	"github.com/Witalo2025/TUMAPS2/internal/domain/service"
)

// Feed はクライアントから送られてきた位置情報を購読者に配信する
// セッションごとに1つ作成される
type Feed struct {
	mu       sync.Mutex
	watchers map[uint64]func(model.Coordinates)
	nextID   uint64
	last     *model.Coordinates
}

// NewFeed 空のフィードを作成
func NewFeed() *Feed {
	return &Feed{watchers: make(map[uint64]func(model.Coordinates))}
}

// Watch は購読を登録する。コールバックは Publish 時にのみ呼ばれ、登録時には呼ばれない
func (f *Feed) Watch(onSample func(model.Coordinates)) (service.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	f.watchers[id] = onSample
	return &feedSubscription{feed: f, id: id}, nil
}

// Publish はサンプルを全購読者に配信し、配信した購読者数を返す
// コールバックはロックの外で呼ぶ
func (f *Feed) Publish(sample model.Coordinates) int {
	f.mu.Lock()
	s := sample
	f.last = &s
	callbacks := make([]func(model.Coordinates), 0, len(f.watchers))
	for _, cb := range f.watchers {
		callbacks = append(callbacks, cb)
	}
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(sample)
	}
	return len(callbacks)
}

// Last 最後に受け取ったサンプル
func (f *Feed) Last() (model.Coordinates, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return model.Coordinates{}, false
	}
	return *f.last, true
}

// Active 現在の購読者数
func (f *Feed) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}

type feedSubscription struct {
	once sync.Once
	feed *Feed
	id   uint64
}

func (s *feedSubscription) Cancel() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		defer s.feed.mu.Unlock()
		delete(s.feed.watchers, s.id)
	})
}
