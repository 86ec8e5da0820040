package voice

import (
	"log"
	"sync"
)

// DefaultQueueCapacity 1セッションで保持する読み上げ文の上限
const DefaultQueueCapacity = 32

// QueueAnnouncer は読み上げ文を溜めておき、フロントエンドが取り出して再生する
// 上限を超えた場合は古いものから捨てる
type QueueAnnouncer struct {
	mu       sync.Mutex
	capacity int
	queue    []string
	dropped  int
}

// NewQueueAnnouncer capacity が0以下なら DefaultQueueCapacity を使う
func NewQueueAnnouncer(capacity int) *QueueAnnouncer {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &QueueAnnouncer{capacity: capacity}
}

// Announce は読み上げ文をキューに追加する
func (a *QueueAnnouncer) Announce(text string) {
	if text == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.queue) >= a.capacity {
		a.queue = a.queue[1:]
		a.dropped++
	}
	a.queue = append(a.queue, text)
	log.Printf("🔊 読み上げ: %s", text)
}

// Drain は溜まっている読み上げ文を古い順に返し、キューを空にする
func (a *QueueAnnouncer) Drain() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, len(a.queue))
	copy(out, a.queue)
	a.queue = nil
	return out
}

// Pending 未取得の件数
func (a *QueueAnnouncer) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// Dropped 上限超過で捨てた件数
func (a *QueueAnnouncer) Dropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}
