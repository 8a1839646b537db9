package domain

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// PlayerState is the per-guild mutable playback state: the queue, the song
// currently bound to the voice sink, and the loop mode.
//
// PlayerState is not internally synchronized. Callers serialize every state
// transition for a guild by holding the state's lock; the lock is held only
// for the duration of the transition, never across a voice or network call.
type PlayerState struct {
	mu sync.Mutex

	guildID        snowflake.ID
	voiceChannelID snowflake.ID

	Queue    Queue
	current  *Song
	loopMode LoopMode
	paused   bool

	// skipRequested marks the current song as consumed so the next advance
	// moves past it even under song loop.
	skipRequested bool
}

// NewPlayerState creates a fresh PlayerState for the given guild with an
// empty queue, no current song, and looping off.
func NewPlayerState(guildID snowflake.ID) *PlayerState {
	return &PlayerState{
		guildID: guildID,
		Queue:   NewQueue(),
	}
}

// Lock acquires the guild's serialization lock.
func (p *PlayerState) Lock() { p.mu.Lock() }

// Unlock releases the guild's serialization lock.
func (p *PlayerState) Unlock() { p.mu.Unlock() }

// GuildID returns the guild this state belongs to. Immutable after creation.
func (p *PlayerState) GuildID() snowflake.ID {
	return p.guildID
}

// VoiceChannelID returns the voice channel the sink is bound to.
func (p *PlayerState) VoiceChannelID() snowflake.ID {
	return p.voiceChannelID
}

// SetVoiceChannel updates the bound voice channel.
func (p *PlayerState) SetVoiceChannel(channelID snowflake.ID) {
	p.voiceChannelID = channelID
}

// Current returns the song presently bound to the voice sink, or nil when the
// guild is idle.
func (p *PlayerState) Current() *Song {
	return p.current
}

// IsIdle returns true when no song is playing or about to play.
func (p *PlayerState) IsIdle() bool {
	return p.current == nil
}

// LoopMode returns the current loop mode.
func (p *PlayerState) LoopMode() LoopMode {
	return p.loopMode
}

// SetLoopMode sets the loop mode. No effect on the currently playing song.
func (p *PlayerState) SetLoopMode(mode LoopMode) {
	p.loopMode = mode
}

// IsPaused returns true if playback is paused.
func (p *PlayerState) IsPaused() bool {
	return p.paused
}

// SetPaused sets the paused flag.
func (p *PlayerState) SetPaused(paused bool) {
	p.paused = paused
}

// RequestSkip marks the current song so the next advance moves past it,
// bypassing the song-loop and single-song queue-loop replay branches.
func (p *PlayerState) RequestSkip() {
	p.skipRequested = true
}

// NextSong decides what plays next and mutates queue and current accordingly:
//
//  1. song loop replays the current song unchanged;
//  2. otherwise the front of the queue is popped, and under queue loop the
//     previous current song is appended to the back after the pop;
//  3. a single looping song with an empty queue replays under queue loop;
//  4. otherwise the current song is cleared and nil is returned.
//
// A pending skip request suppresses the replay branches (1 and 3) so skip
// always moves forward, and is consumed by this call.
func (p *PlayerState) NextSong() *Song {
	skip := p.skipRequested
	p.skipRequested = false

	if p.loopMode == LoopSong && p.current != nil && !skip {
		return p.current
	}

	if next, ok := p.Queue.PopFront(); ok {
		if p.loopMode == LoopQueue && p.current != nil {
			p.Queue.PushBack(*p.current)
		}
		p.current = &next
		return p.current
	}

	if p.loopMode == LoopQueue && p.current != nil && !skip {
		return p.current
	}

	p.current = nil
	return nil
}

// Reset clears the queue, the current song, and the loop mode.
func (p *PlayerState) Reset() {
	p.Queue.Clear()
	p.current = nil
	p.loopMode = LoopOff
	p.paused = false
	p.skipRequested = false
}
