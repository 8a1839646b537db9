package domain

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func TestPlayerState_Defaults(t *testing.T) {
	state := NewPlayerState(snowflake.ID(1))

	if !state.IsIdle() {
		t.Error("new state should be idle")
	}
	if state.LoopMode() != LoopOff {
		t.Errorf("LoopMode() = %v, want LoopOff", state.LoopMode())
	}
	if !state.Queue.IsEmpty() {
		t.Error("new state should have an empty queue")
	}
	if state.IsPaused() {
		t.Error("new state should not be paused")
	}
}

func TestPlayerState_NextSong(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*PlayerState)
		wantID      string // "" means idle
		wantQueue   []string
		wantCurrent string // "" means cleared
	}{
		{
			name: "loop off pops front",
			setup: func(p *PlayerState) {
				p.Queue.PushBack(song("a"), song("b"))
			},
			wantID:      "a",
			wantQueue:   []string{"b"},
			wantCurrent: "a",
		},
		{
			name: "loop off discards finished current",
			setup: func(p *PlayerState) {
				p.Queue.PushBack(song("a"), song("b"))
				p.NextSong() // now playing a
			},
			wantID:      "b",
			wantQueue:   []string{},
			wantCurrent: "b",
		},
		{
			name: "loop off empty queue goes idle",
			setup: func(p *PlayerState) {
				p.Queue.PushBack(song("a"))
				p.NextSong()
			},
			wantID:      "",
			wantQueue:   []string{},
			wantCurrent: "",
		},
		{
			name: "song loop replays current",
			setup: func(p *PlayerState) {
				p.SetLoopMode(LoopSong)
				p.Queue.PushBack(song("a"), song("b"))
				p.NextSong()
			},
			wantID:      "a",
			wantQueue:   []string{"b"},
			wantCurrent: "a",
		},
		{
			name: "song loop with no current falls through to queue",
			setup: func(p *PlayerState) {
				p.SetLoopMode(LoopSong)
				p.Queue.PushBack(song("a"))
			},
			wantID:      "a",
			wantQueue:   []string{},
			wantCurrent: "a",
		},
		{
			name: "queue loop appends finished song to the back",
			setup: func(p *PlayerState) {
				p.SetLoopMode(LoopQueue)
				p.Queue.PushBack(song("a"), song("b"))
				p.NextSong() // now playing a, queue [b]
			},
			wantID:      "b",
			wantQueue:   []string{"a"},
			wantCurrent: "b",
		},
		{
			name: "queue loop replays single song on empty queue",
			setup: func(p *PlayerState) {
				p.SetLoopMode(LoopQueue)
				p.Queue.PushBack(song("a"))
				p.NextSong()
			},
			wantID:      "a",
			wantQueue:   []string{},
			wantCurrent: "a",
		},
		{
			name: "skip bypasses song loop replay",
			setup: func(p *PlayerState) {
				p.SetLoopMode(LoopSong)
				p.Queue.PushBack(song("a"), song("b"))
				p.NextSong()
				p.RequestSkip()
			},
			wantID:      "b",
			wantQueue:   []string{},
			wantCurrent: "b",
		},
		{
			name: "skip under queue loop still recycles the skipped song",
			setup: func(p *PlayerState) {
				p.SetLoopMode(LoopQueue)
				p.Queue.PushBack(song("a"), song("b"))
				p.NextSong()
				p.RequestSkip()
			},
			wantID:      "b",
			wantQueue:   []string{"a"},
			wantCurrent: "b",
		},
		{
			name: "skip on single looping song goes idle",
			setup: func(p *PlayerState) {
				p.SetLoopMode(LoopQueue)
				p.Queue.PushBack(song("a"))
				p.NextSong()
				p.RequestSkip()
			},
			wantID:      "",
			wantQueue:   []string{},
			wantCurrent: "",
		},
		{
			name:        "empty state goes idle",
			setup:       func(p *PlayerState) {},
			wantID:      "",
			wantQueue:   []string{},
			wantCurrent: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewPlayerState(snowflake.ID(1))
			tt.setup(state)

			next := state.NextSong()

			if tt.wantID == "" {
				if next != nil {
					t.Errorf("NextSong() = %q, want nil", next.ID)
				}
			} else {
				if next == nil {
					t.Fatalf("NextSong() = nil, want %q", tt.wantID)
				}
				if next.ID != tt.wantID {
					t.Errorf("NextSong() = %q, want %q", next.ID, tt.wantID)
				}
			}

			gotQueue := state.Queue.List()
			if len(gotQueue) != len(tt.wantQueue) {
				t.Fatalf("queue length = %d, want %d", len(gotQueue), len(tt.wantQueue))
			}
			for i, id := range tt.wantQueue {
				if gotQueue[i].ID != id {
					t.Errorf("queue[%d] = %q, want %q", i, gotQueue[i].ID, id)
				}
			}

			current := state.Current()
			if tt.wantCurrent == "" {
				if current != nil {
					t.Errorf("Current() = %q, want nil", current.ID)
				}
			} else if current == nil || current.ID != tt.wantCurrent {
				t.Errorf("Current() = %v, want %q", current, tt.wantCurrent)
			}
		})
	}
}

func TestPlayerState_SkipRequestConsumedOnce(t *testing.T) {
	state := NewPlayerState(snowflake.ID(1))
	state.SetLoopMode(LoopSong)
	state.Queue.PushBack(song("a"), song("b"))
	state.NextSong() // playing a

	state.RequestSkip()
	if next := state.NextSong(); next == nil || next.ID != "b" {
		t.Fatalf("NextSong() after skip = %v, want b", next)
	}

	// The skip request must not leak into the next advance.
	if next := state.NextSong(); next == nil || next.ID != "b" {
		t.Errorf("NextSong() = %v, want song loop to replay b", next)
	}
}

func TestPlayerState_Reset(t *testing.T) {
	state := NewPlayerState(snowflake.ID(1))
	state.SetLoopMode(LoopQueue)
	state.SetPaused(true)
	state.Queue.PushBack(song("a"), song("b"))
	state.NextSong()

	state.Reset()

	if !state.IsIdle() {
		t.Error("state should be idle after Reset()")
	}
	if !state.Queue.IsEmpty() {
		t.Error("queue should be empty after Reset()")
	}
	if state.LoopMode() != LoopOff {
		t.Errorf("LoopMode() = %v after Reset(), want LoopOff", state.LoopMode())
	}
	if state.IsPaused() {
		t.Error("state should not be paused after Reset()")
	}
}
