package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"LrcSync/core/lyrics"
	"LrcSync/logger"

	"github.com/google/uuid"
)

// ErrSessionNotFound 会话不存在或已关闭
var ErrSessionNotFound = errors.New("session not found")

// Position 一次定位的结果
type Position struct {
	Current   *lyrics.Line `json:"current"`
	Next      *lyrics.Line `json:"next"`
	Index     int          `json:"index"`
	TimeDelay float64      `json:"timeDelay"`
}

// Session 一个播放端持有的歌词文档
//
// lyrics.Document 不加锁，Session 负责把 timeDelay 调整与定位查询串行化。
type Session struct {
	ID       string
	TrackKey string

	mu        sync.RWMutex
	doc       *lyrics.Document
	lastIndex int
	updatedAt time.Time
}

func newSession(trackKey string, doc *lyrics.Document) *Session {
	return &Session{
		ID:        uuid.NewString(),
		TrackKey:  trackKey,
		doc:       doc,
		lastIndex: -1,
		updatedAt: time.Now(),
	}
}

// Locate 查询 position（秒）处的当前行与下一行，不影响 LocateChanged 的变化检测
func (s *Session) Locate(position float64) Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updatedAt = time.Now()
	return s.locate(position)
}

// LocateChanged 与 Locate 相同，但当前行与上次 LocateChanged 相同时 changed 为 false
func (s *Session) LocateChanged(position float64) (pos Position, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updatedAt = time.Now()
	pos = s.locate(position)
	changed = pos.Index != s.lastIndex
	s.lastIndex = pos.Index
	return pos, changed
}

// locate 调用方需持有锁
func (s *Session) locate(position float64) Position {
	cur, next := s.doc.Locate(position)
	return Position{
		Current:   cur,
		Next:      next,
		Index:     s.doc.LocateIndex(position),
		TimeDelay: s.doc.TimeDelay(),
	}
}

func (s *Session) TimeDelay() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.TimeDelay()
}

func (s *Session) Offset() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Offset()
}

func (s *Session) SetTimeDelay(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.SetTimeDelay(seconds)
	s.lastIndex = -2 // 强制下一次定位视为变化
	s.updatedAt = time.Now()
}

// AdjustDelay 在当前 timeDelay 上加 delta 秒，返回新值
//
// 按毫秒累加，多次微调不会因截断产生漂移。
func (s *Session) AdjustDelay(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.SetOffset(s.doc.Offset() + int(math.Round(delta*1000)))
	s.lastIndex = -2
	s.updatedAt = time.Now()
	return s.doc.TimeDelay()
}

// Replace 切歌时替换文档
func (s *Session) Replace(trackKey string, doc *lyrics.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TrackKey = trackKey
	s.doc = doc
	s.lastIndex = -1
	s.updatedAt = time.Now()
}

func (s *Session) Track() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TrackKey
}

func (s *Session) Describe() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Describe()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Manager 管理所有播放会话
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create 为 doc 创建新会话
func (m *Manager) Create(trackKey string, doc *lyrics.Document) *Session {
	s := newSession(trackKey, doc)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	logger.Debug("创建歌词会话",
		logger.String("sessionId", s.ID),
		logger.String("trackKey", trackKey))
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ExpireIdle 移除超过 maxIdle 未活动的会话，返回移除数量
func (m *Manager) ExpireIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		logger.Info("清理空闲歌词会话", logger.Int("removed", removed))
	}
	return removed
}

// RunJanitor 每隔 interval 清理一次空闲会话，直到 ctx 结束
func (m *Manager) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.ExpireIdle(maxIdle)
		}
	}
}
