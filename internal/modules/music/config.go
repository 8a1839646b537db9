package music

import (
	"time"
)

// Resolver selection values.
const (
	ResolverLavalink = "lavalink"
	ResolverYtdlp    = "ytdlp"
)

// Config holds the music module configuration loaded from environment
// variables.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD"`

	// Resolver selects how queries are turned into tracks: "lavalink" uses
	// the node's own sources, "ytdlp" shells out to the yt-dlp binary.
	Resolver string `env:"MUSIC_RESOLVER" envDefault:"lavalink"`

	ConnectTimeout time.Duration `env:"MUSIC_CONNECT_TIMEOUT" envDefault:"15s"`
	AutoLeaveDelay time.Duration `env:"MUSIC_AUTO_LEAVE" envDefault:"120s"`
	PlaylistLimit  int           `env:"MUSIC_PLAYLIST_LIMIT" envDefault:"10"`
}
