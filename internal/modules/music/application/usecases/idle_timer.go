package usecases

import (
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// AutoLeaveTimer schedules a one-shot idle disconnect per guild. Re-arming
// replaces the pending schedule; cancelling is race-free against a concurrent
// fire: either the cancel wins and the action never runs, or the fire wins
// and the cancel is a no-op.
type AutoLeaveTimer struct {
	mu      sync.Mutex
	delay   time.Duration
	expire  func(guildID snowflake.ID)
	pending map[snowflake.ID]*time.Timer
}

// NewAutoLeaveTimer creates an AutoLeaveTimer that invokes expire after delay
// unless the schedule is cancelled or replaced first.
func NewAutoLeaveTimer(delay time.Duration, expire func(guildID snowflake.ID)) *AutoLeaveTimer {
	return &AutoLeaveTimer{
		delay:   delay,
		expire:  expire,
		pending: make(map[snowflake.ID]*time.Timer),
	}
}

// Arm schedules the idle disconnect for the guild, replacing any pending
// schedule (reset semantics, not stacking).
func (a *AutoLeaveTimer) Arm(guildID snowflake.ID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if prev, ok := a.pending[guildID]; ok {
		prev.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(a.delay, func() {
		a.fire(guildID, timer)
	})
	a.pending[guildID] = timer

	slog.Debug("armed auto-leave timer", "guild", guildID, "delay", a.delay)
}

// fire runs the expire action if this timer is still the registered schedule.
// A timer that was cancelled or replaced after its callback started loses the
// identity check and does nothing.
func (a *AutoLeaveTimer) fire(guildID snowflake.ID, timer *time.Timer) {
	a.mu.Lock()
	if a.pending[guildID] != timer {
		a.mu.Unlock()
		return
	}
	delete(a.pending, guildID)
	a.mu.Unlock()

	a.expire(guildID)
}

// Cancel drops the pending schedule for the guild. No-op if none is pending.
func (a *AutoLeaveTimer) Cancel(guildID snowflake.ID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if timer, ok := a.pending[guildID]; ok {
		timer.Stop()
		delete(a.pending, guildID)
		slog.Debug("cancelled auto-leave timer", "guild", guildID)
	}
}

// Armed reports whether a schedule is pending for the guild.
func (a *AutoLeaveTimer) Armed(guildID snowflake.ID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pending[guildID]
	return ok
}
