package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// CompletionFunc reports the end of a play dispatch. It fires exactly once
// per Play call, with nil on natural completion or an error otherwise, and is
// never invoked synchronously from within Play itself.
type CompletionFunc func(err error)

// VoiceSink is a live voice connection for a guild.
type VoiceSink interface {
	// Connect joins the given voice channel. The caller bounds the wait via
	// the context; on timeout no state is mutated.
	Connect(ctx context.Context, guildID, channelID snowflake.ID) error

	// MoveTo moves an existing connection to another channel.
	MoveTo(ctx context.Context, guildID, channelID snowflake.ID) error

	// Disconnect tears down the voice connection. No-op if not connected.
	Disconnect(ctx context.Context, guildID snowflake.ID) error

	// Play starts playback of the given stream locator. onComplete fires
	// exactly once, later, when the track ends or fails; stopping the sink
	// also counts as completion.
	Play(ctx context.Context, guildID snowflake.ID, locator string, onComplete CompletionFunc) error

	// Stop aborts the current playback, triggering the completion callback.
	Stop(ctx context.Context, guildID snowflake.ID) error

	Pause(ctx context.Context, guildID snowflake.ID) error
	Resume(ctx context.Context, guildID snowflake.ID) error

	IsConnected(guildID snowflake.ID) bool
	IsPlaying(guildID snowflake.ID) bool
	IsPaused(guildID snowflake.ID) bool
}
