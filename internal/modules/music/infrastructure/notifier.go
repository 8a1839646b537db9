package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"

	"github.com/maestro-bot/maestro/internal/modules/music/application/ports"
	"github.com/maestro-bot/maestro/internal/modules/music/domain"
)

// Embed colors.
const (
	colorBlue = 0x3498DB
	colorRed  = 0xE74C3C
)

// sendWaitLimit bounds how long a notification waits on the rate limiter
// before being dropped.
const sendWaitLimit = 3 * time.Second

// EmbedNotifier sends playback embeds to Discord text channels. Sends are
// rate limited so a failing queue cannot flood a channel with error embeds.
type EmbedNotifier struct {
	session *discordgo.Session
	limiter *rate.Limiter
}

// NewEmbedNotifier creates an EmbedNotifier. One message per second sustained,
// with a burst of five.
func NewEmbedNotifier(session *discordgo.Session) *EmbedNotifier {
	return &EmbedNotifier{
		session: session,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}
}

// NowPlaying announces the song with an embed in its origin channel.
func (n *EmbedNotifier) NowPlaying(channelID snowflake.ID, song domain.Song) error {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Now Playing",
		},
		Title: song.Title,
		URL:   song.PageURL,
		Color: colorBlue,
	}

	if song.Duration > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Duration",
			Value:  song.FormattedDuration(),
			Inline: true,
		})
	}
	if song.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{
			URL: song.ThumbnailURL,
		}
	}
	if song.RequesterName != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("Requested by %s", song.RequesterName),
			IconURL: song.RequesterAvatarURL,
		}
	}

	return n.send(channelID, embed)
}

// PlaybackError reports a failed song with a red embed.
func (n *EmbedNotifier) PlaybackError(channelID snowflake.ID, title, message string) error {
	embed := &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Failed to play **%s**: %s", title, message),
		Color:       colorRed,
	}

	return n.send(channelID, embed)
}

func (n *EmbedNotifier) send(channelID snowflake.ID, embed *discordgo.MessageEmbed) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendWaitLimit)
	defer cancel()
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notification rate limited: %w", err)
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// Ensure EmbedNotifier implements ports.Notifier.
var _ ports.Notifier = (*EmbedNotifier)(nil)
