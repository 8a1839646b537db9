package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// Registry owns the guild to player state mapping. States are created lazily
// on first use and removed on stop or disconnect so one-off guilds do not
// accumulate.
type Registry interface {
	// GetOrCreate returns the existing state for the guild, or inserts and
	// returns a fresh default one.
	GetOrCreate(guildID snowflake.ID) *PlayerState

	// Get returns the state for the guild, or nil if none exists.
	Get(guildID snowflake.ID) *PlayerState

	// Remove deletes the guild's state. Idempotent.
	Remove(guildID snowflake.ID)
}
