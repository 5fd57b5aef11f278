package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// memorySessionRepo はテスト用のインメモリSessionRepository。
// Touchの単調更新はPostgresSessionRepoのGREATESTと同じ振る舞いにしている。
type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]model.Session)}
}

func (r *memorySessionRepo) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return fmt.Errorf("failed to create session: duplicate id")
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *memorySessionRepo) Touch(_ context.Context, id string, at time.Time) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	if at.After(s.LastActivity) {
		s.LastActivity = at
		r.sessions[id] = s
	}
	return &s, nil
}

func (r *memorySessionRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false, nil
	}
	delete(r.sessions, id)
	return true, nil
}

func (r *memorySessionRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memorySessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

var _ repository.SessionRepository = (*memorySessionRepo)(nil)
