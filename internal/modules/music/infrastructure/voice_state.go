package infrastructure

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/maestro-bot/maestro/internal/modules/music/application/ports"
)

// SessionVoiceState reads user voice states from the discordgo state cache.
type SessionVoiceState struct {
	session *discordgo.Session
}

// NewSessionVoiceState creates a SessionVoiceState.
func NewSessionVoiceState(session *discordgo.Session) *SessionVoiceState {
	return &SessionVoiceState{
		session: session,
	}
}

// UserVoiceChannel returns the voice channel the user is currently in, or 0
// if the user is not in a voice channel.
func (v *SessionVoiceState) UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return 0, err
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID.String() && vs.ChannelID != "" {
			channelID, err := snowflake.Parse(vs.ChannelID)
			if err != nil {
				return 0, err
			}
			return channelID, nil
		}
	}

	return 0, nil
}

// Ensure SessionVoiceState implements ports.VoiceStateProvider.
var _ ports.VoiceStateProvider = (*SessionVoiceState)(nil)
