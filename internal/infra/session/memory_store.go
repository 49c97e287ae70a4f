package session

import (
	"context"
	"sync"
	"time"

	"orderbot/internal/conversation"
)

type entry struct {
	draft     conversation.Draft
	expiresAt time.Time
}

// MemoryStore はプロセス内の map。単一インスタンス運用向け。
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[int64]entry
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{drafts: map[int64]entry{}, ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (conversation.Draft, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.lookup(userID)
	return d, ok, nil
}

func (s *MemoryStore) Take(_ context.Context, userID int64) (conversation.Draft, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.lookup(userID)
	if ok {
		delete(s.drafts, userID)
	}
	return d, ok, nil
}

// s.mu を持った状態で呼ぶ。期限切れは読んだ時点で消す。
func (s *MemoryStore) lookup(userID int64) (conversation.Draft, bool) {
	e, ok := s.drafts[userID]
	if !ok {
		return conversation.Draft{}, false
	}
	if s.ttl > 0 && !s.now().Before(e.expiresAt) {
		delete(s.drafts, userID)
		return conversation.Draft{}, false
	}
	return e.draft, true
}

func (s *MemoryStore) Save(_ context.Context, d conversation.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[d.UserID] = entry{draft: d, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, userID)
	return nil
}

// Sweep は期限切れをまとめて消す。消した件数を返す。
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.drafts {
		if !now.Before(e.expiresAt) {
			delete(s.drafts, id)
			n++
		}
	}
	return n
}

// RunSweeper は ctx が終わるまで interval ごとに Sweep する。
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

var _ conversation.DraftStore = (*MemoryStore)(nil)
