package session

import (
	"sync"
	"time"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
)

// DefaultTTL 快照預設存活時間（與宿主會話逾時一致）
const DefaultTTL = 30 * time.Minute

type entry struct {
	snapshot  loyalty.RedemptionSnapshot
	expiresAt time.Time
}

// MemorySnapshotStore 以會話鍵保存兌換快照的記憶體存儲
//
// 過期的快照在讀取時視為不存在；寫入時順便清除所有過期項目，
// 放棄結帳的會話不會無限累積。
type MemorySnapshotStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	nowFn   func() time.Time
}

// NewMemorySnapshotStore 建構函數
//
// ttl <= 0 時使用 DefaultTTL；nowFn 為 nil 時使用 time.Now。
func NewMemorySnapshotStore(ttl time.Duration, nowFn func() time.Time) *MemorySnapshotStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &MemorySnapshotStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		nowFn:   nowFn,
	}
}

// GetSnapshot 實現 loyalty.SnapshotStore
func (s *MemorySnapshotStore) GetSnapshot(sessionKey string) (loyalty.RedemptionSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionKey]
	if !ok {
		return loyalty.RedemptionSnapshot{}, false
	}
	if !s.nowFn().Before(e.expiresAt) {
		delete(s.entries, sessionKey)
		return loyalty.RedemptionSnapshot{}, false
	}
	return e.snapshot, true
}

// SetSnapshot 實現 loyalty.SnapshotStore（整筆覆寫並重置存活時間）
func (s *MemorySnapshotStore) SetSnapshot(sessionKey string, snapshot loyalty.RedemptionSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	s.pruneLocked(now)
	s.entries[sessionKey] = entry{snapshot: snapshot, expiresAt: now.Add(s.ttl)}
}

// DeleteSnapshot 實現 loyalty.SnapshotStore
func (s *MemorySnapshotStore) DeleteSnapshot(sessionKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionKey)
}

// Len 目前保存的快照數（含尚未清除的過期項目）
func (s *MemorySnapshotStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemorySnapshotStore) pruneLocked(now time.Time) {
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
