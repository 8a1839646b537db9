package domain

import (
	"time"
)

// Report is a point-in-time health snapshot of the bot.
type Report struct {
	Version   string
	Uptime    time.Duration
	Guilds    int
	Timestamp time.Time
}

// NewReport creates a Report for the given start time and guild count.
func NewReport(version string, startedAt time.Time, guilds int) *Report {
	now := time.Now()
	return &Report{
		Version:   version,
		Uptime:    now.Sub(startedAt).Truncate(time.Second),
		Guilds:    guilds,
		Timestamp: now,
	}
}
