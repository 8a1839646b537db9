package domain

// LoopMode is the repetition policy for a guild's playback.
type LoopMode int

const (
	LoopOff   LoopMode = iota // no repetition
	LoopSong                  // replay the current song until changed
	LoopQueue                 // finished songs are appended to the back of the queue
)

// String returns a human-readable representation of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopSong:
		return "song"
	case LoopQueue:
		return "queue"
	default:
		return "off"
	}
}

// ParseLoopMode converts a string to a LoopMode. Unknown values map to LoopOff.
func ParseLoopMode(s string) LoopMode {
	switch s {
	case "song":
		return LoopSong
	case "queue":
		return LoopQueue
	default:
		return LoopOff
	}
}
