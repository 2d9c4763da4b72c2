package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

type memoryEntry struct {
	state     entity.GameState
	expiresAt time.Time
}

type memoryGame struct {
	mu    sync.Mutex
	games map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryGameRepository - keeps games in process memory with the same
// expiry rules as the Redis repository. A zero ttl never expires.
func NewMemoryGameRepository(ttl time.Duration) GameRepository {
	return &memoryGame{
		games: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (that *memoryGame) CreateOrUpdate(_ context.Context, sessionID string, state *entity.GameState) error {
	entry := memoryEntry{state: *state}
	if that.ttl > 0 {
		entry.expiresAt = that.now().Add(that.ttl)
	}

	that.mu.Lock()
	that.games[sessionID] = entry
	that.mu.Unlock()

	return nil
}

func (that *memoryGame) GetBySessionID(_ context.Context, sessionID string) (*entity.GameState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.games[sessionID]
	if !ok {
		return nil, ErrGameNotFound
	}

	if that.expired(entry) {
		delete(that.games, sessionID)
		return nil, ErrGameNotFound
	}

	state := entry.state

	return &state, nil
}

func (that *memoryGame) DeleteBySessionID(_ context.Context, sessionID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.games[sessionID]
	if !ok || that.expired(entry) {
		delete(that.games, sessionID)
		return ErrGameNotFound
	}

	delete(that.games, sessionID)

	return nil
}

func (that *memoryGame) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !that.now().Before(entry.expiresAt)
}
