package usecase

import (
	"errors"
	"sync"

	"github.com/Witalo2025/TUMAPS2/internal/domain/service"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/geolocation"
	"github.com/Witalo2025/TUMAPS2/internal/infrastructure/voice"
)

// ErrSessionNotFound 指定されたセッションが存在しない
var ErrSessionNotFound = errors.New("セッションが見つかりません")

// sessionEntry 1セッション分のコントローラと付随リソース
type sessionEntry struct {
	controller *service.SessionController
	feed       *geolocation.Feed
	announcer  *voice.QueueAnnouncer

	mu           sync.Mutex
	lastSearchID string
}

func (e *sessionEntry) searchID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSearchID
}

func (e *sessionEntry) setSearchID(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSearchID = id
}

// SessionStore はメモリ上でセッションを管理する
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewSessionStore 空のストアを作成
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*sessionEntry)}
}

func (s *SessionStore) put(id string, entry *sessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = entry
}

func (s *SessionStore) get(id string) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}

// remove はストアから取り除き、取り除いたエントリを返す
func (s *SessionStore) remove(id string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	delete(s.sessions, id)
	return entry, nil
}

// Len 現在のセッション数
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseAll 全セッションを終了する（シャットダウン時）
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for id, entry := range s.sessions {
		entries = append(entries, entry)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, entry := range entries {
		entry.controller.Close()
	}
}
