package ports

import (
	"github.com/disgoorg/snowflake/v2"

	"github.com/maestro-bot/maestro/internal/modules/music/domain"
)

// Notifier sends formatted playback messages to text channels. Failures such
// as missing permissions are reported as errors for the caller to log; they
// must never abort playback.
type Notifier interface {
	// NowPlaying announces the song in its origin text channel.
	NowPlaying(channelID snowflake.ID, song domain.Song) error

	// PlaybackError reports a failed song. message is already truncated.
	PlaybackError(channelID snowflake.ID, title, message string) error
}
