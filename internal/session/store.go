package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"cvBuilder/internal/cv"
	"cvBuilder/internal/export"
)

// ErrNotFound 表示会话不存在或已过期。
var ErrNotFound = errors.New("session not found")

// Session 持有一份编辑中的简历文档及其导出锁。
type Session struct {
	ID       string
	Document *cv.Document
	Export   *export.Guard

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Store 是内存中的会话注册表。空闲超过 idleTTL 的会话在访问时被惰性清理。
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idleTTL  time.Duration
	now      func() time.Time
}

// NewStore 创建会话注册表，idleTTL <= 0 表示永不过期。
func NewStore(idleTTL time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Create 新建一个包含空白文档的会话。
func (s *Store) Create() *Session {
	now := s.now()
	sess := &Session{
		ID:       uuid.NewString(),
		Document: cv.NewDocument(),
		Export:   &export.Guard{},
		lastSeen: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.Sweep()
	return sess
}

// Get 返回会话并刷新其活跃时间。
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	now := s.now()
	if s.expired(sess, now) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	sess.touch(now)
	return sess, nil
}

// Len 返回当前会话数量。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep 移除所有过期会话，返回移除数量。
func (s *Store) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(sess.idleSince()) > s.idleTTL
}
