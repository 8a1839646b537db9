package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Song is an immutable descriptor of a queued track. Once created it is owned
// by the queue, or by the player state while it is the current song.
type Song struct {
	ID                 string
	StreamLocator      string // resolved, possibly time-limited playback reference
	Title              string
	ThumbnailURL       string
	Duration           time.Duration
	PageURL            string // the track's source page, for embed links
	RequesterName      string
	RequesterAvatarURL string
	OriginChannelID    snowflake.ID // text channel the request came from
}

// Playable reports whether the song carries the minimum required fields.
// Resolved entries without a stream locator are dropped before enqueueing.
func (s Song) Playable() bool {
	return s.StreamLocator != "" && s.Title != ""
}

// FormattedDuration renders the duration as mm:ss, or hh:mm:ss for long tracks.
func (s Song) FormattedDuration() string {
	total := int(s.Duration.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
