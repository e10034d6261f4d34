// Package session отслеживает окна ожидания депозита по пользователям.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/mmeshcher/tronpay-system/internal/model"
)

// Store хранит открытые сессии депозита. У пользователя может быть не более
// одной сессии; Open замещает существующую (последняя запись выигрывает).
// Все операции безопасны для конкурентного использования.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]model.DepositSession

	ttl           time.Duration
	sweepInterval time.Duration
}

// NewStore создаёт хранилище сессий с указанным временем жизни сессии и
// интервалом периодической очистки.
func NewStore(ttl, sweepInterval time.Duration) *Store {
	return &Store{
		sessions:      make(map[int64]model.DepositSession),
		ttl:           ttl,
		sweepInterval: sweepInterval,
	}
}

// Open открывает сессию депозита для пользователя, замещая существующую.
func (s *Store) Open(userID int64) model.DepositSession {
	now := time.Now()
	session := model.DepositSession{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[userID] = session
	s.mu.Unlock()

	return session
}

// IsOpen сообщает, есть ли у пользователя открытая непросроченная сессия.
// Просроченная, но ещё не удалённая очисткой сессия считается закрытой.
func (s *Store) IsOpen(userID int64) bool {
	s.mu.RLock()
	session, ok := s.sessions[userID]
	s.mu.RUnlock()

	return ok && time.Now().Before(session.ExpiresAt)
}

// Close закрывает сессию пользователя, если она есть.
func (s *Store) Close(userID int64) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

// Run запускает периодическую очистку просроченных сессий и блокируется до
// отмены контекста. Очистка только удаляет записи.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	for userID, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, userID)
		}
	}
	s.mu.Unlock()
}
