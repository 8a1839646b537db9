package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/maestro-bot/maestro/internal/modules/music/domain"
)

// MemoryRegistry is an in-memory implementation of domain.Registry.
type MemoryRegistry struct {
	mu     sync.RWMutex
	states map[snowflake.ID]*domain.PlayerState
}

// NewMemoryRegistry creates an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		states: make(map[snowflake.ID]*domain.PlayerState),
	}
}

// GetOrCreate returns the guild's state, creating a fresh one if absent.
func (r *MemoryRegistry) GetOrCreate(guildID snowflake.ID) *domain.PlayerState {
	r.mu.RLock()
	state, ok := r.states[guildID]
	r.mu.RUnlock()
	if ok {
		return state
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have created it between the locks.
	if state, ok := r.states[guildID]; ok {
		return state
	}
	state = domain.NewPlayerState(guildID)
	r.states[guildID] = state
	return state
}

// Get returns the guild's state, or nil if the guild has no active session.
func (r *MemoryRegistry) Get(guildID snowflake.ID) *domain.PlayerState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[guildID]
}

// Remove drops the guild's state. No-op if absent.
func (r *MemoryRegistry) Remove(guildID snowflake.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, guildID)
}

// Count returns the number of active guild sessions (for testing/monitoring).
func (r *MemoryRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}

// Ensure MemoryRegistry implements domain.Registry.
var _ domain.Registry = (*MemoryRegistry)(nil)
