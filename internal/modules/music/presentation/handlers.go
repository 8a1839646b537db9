package presentation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/maestro-bot/maestro/internal/bot"
	"github.com/maestro-bot/maestro/internal/modules/music/application/usecases"
	"github.com/maestro-bot/maestro/internal/modules/music/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// Handlers holds the slash command handlers for the music module.
type Handlers struct {
	playback *usecases.PlaybackService
}

// NewHandlers creates Handlers backed by the given playback service.
func NewHandlers(playback *usecases.PlaybackService) *Handlers {
	return &Handlers{playback: playback}
}

// HandlePlay handles the /play command.
func (h *Handlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "This command only works in a server.")
	}

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user.")
	}

	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid channel.")
	}

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}
	if strings.TrimSpace(query) == "" {
		return respondError(r, "Give me something to play.")
	}

	// Resolution can take seconds, well past the initial-response window, so
	// acknowledge first and edit the answer in afterwards.
	if err := r.Defer(); err != nil {
		return err
	}

	output, err := h.playback.EnqueueRequest(context.Background(), usecases.EnqueueRequestInput{
		GuildID:            guildID,
		UserID:             userID,
		Query:              query,
		RequesterName:      displayName(i.Member),
		RequesterAvatarURL: i.Member.User.AvatarURL(""),
		OriginChannelID:    channelID,
	})
	if err != nil {
		return editError(r, friendlyError(err))
	}

	return editSuccess(r, queuedDescription(output))
}

// HandleSkip handles the /skip command.
func (h *Handlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "This command only works in a server.")
	}

	output, err := h.playback.Skip(context.Background(), guildID)
	if err != nil {
		return respondError(r, friendlyError(err))
	}

	return respondSuccess(r, fmt.Sprintf("Skipped **%s**.", output.SkippedTitle))
}

// HandleStop handles the /stop command.
func (h *Handlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "This command only works in a server.")
	}

	if err := h.playback.Stop(context.Background(), guildID); err != nil {
		return respondError(r, friendlyError(err))
	}

	return respondSuccess(r, "Stopped playback and left the voice channel.")
}

// HandlePause handles the /pause command.
func (h *Handlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "This command only works in a server.")
	}

	if err := h.playback.Pause(context.Background(), guildID); err != nil {
		return respondError(r, friendlyError(err))
	}

	return respondSuccess(r, "Paused playback.")
}

// HandleResume handles the /resume command.
func (h *Handlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "This command only works in a server.")
	}

	if err := h.playback.Resume(context.Background(), guildID); err != nil {
		return respondError(r, friendlyError(err))
	}

	return respondSuccess(r, "Resumed playback.")
}

// HandleLoop handles the /loop command.
func (h *Handlers) HandleLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "This command only works in a server.")
	}

	var modeStr string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "mode" {
			modeStr = opt.StringValue()
		}
	}

	mode := domain.ParseLoopMode(modeStr)
	h.playback.SetLoopMode(guildID, mode)

	switch mode {
	case domain.LoopSong:
		return respondSuccess(r, "Now looping the current song.")
	case domain.LoopQueue:
		return respondSuccess(r, "Now looping the queue.")
	default:
		return respondSuccess(r, "Loop disabled.")
	}
}

// HandleQueue handles the /queue command.
func (h *Handlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "This command only works in a server.")
	}

	var page int
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "page" {
			page = int(opt.IntValue())
		}
	}

	output, err := h.playback.QueueList(usecases.QueueListInput{
		GuildID: guildID,
		Page:    page,
	})
	if err != nil {
		return respondError(r, friendlyError(err))
	}

	return respondQueueList(r, output)
}

// friendlyError maps service errors to user-facing messages.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, usecases.ErrUserNotInVoice):
		return "Join a voice channel first."
	case errors.Is(err, usecases.ErrNotConnected):
		return "I'm not connected to a voice channel."
	case errors.Is(err, usecases.ErrConnectFailed):
		return "Could not connect to your voice channel."
	case errors.Is(err, usecases.ErrNothingPlaying):
		return "Nothing is playing right now."
	case errors.Is(err, usecases.ErrAlreadyPaused):
		return "Playback is already paused."
	case errors.Is(err, usecases.ErrNotPaused):
		return "Playback is not paused."
	case errors.Is(err, usecases.ErrNoResults):
		return "No playable results found."
	default:
		return "Something went wrong while processing your request."
	}
}

// Response helpers.

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}

func respondSuccess(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: message,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func editError(r bot.Responder, message string) error {
	embeds := []*discordgo.MessageEmbed{
		{
			Title:       "Error",
			Description: message,
			Color:       colorError,
		},
	}
	return r.Edit(&discordgo.WebhookEdit{Embeds: &embeds})
}

func editSuccess(r bot.Responder, message string) error {
	embeds := []*discordgo.MessageEmbed{
		{
			Description: message,
			Color:       colorSuccess,
		},
	}
	return r.Edit(&discordgo.WebhookEdit{Embeds: &embeds})
}

func queuedDescription(output *usecases.EnqueueRequestOutput) string {
	switch {
	case len(output.Songs) > 1:
		return fmt.Sprintf("Added **%d** songs to the queue.", len(output.Songs))
	case output.Started:
		return fmt.Sprintf("Playing %s now.", songLink(output.Songs[0]))
	default:
		return fmt.Sprintf("Added %s to the queue at position **%d**.",
			songLink(output.Songs[0]), output.QueueLength)
	}
}

func respondQueueList(r bot.Responder, output *usecases.QueueListOutput) error {
	embed := &discordgo.MessageEmbed{
		Title: "Queue",
	}

	var sb strings.Builder
	if output.Current != nil {
		sb.WriteString("### Now Playing\n")
		fmt.Fprintf(&sb, "%s", songLink(*output.Current))
		if output.Current.Duration > 0 {
			fmt.Fprintf(&sb, " `%s`", output.Current.FormattedDuration())
		}
		sb.WriteString("\n")
	}

	if len(output.Songs) > 0 {
		sb.WriteString("### Up Next\n")
		offset := (output.CurrentPage - 1) * usecases.DefaultPageSize
		for idx, song := range output.Songs {
			// Escape the period so Discord does not render an ordered list.
			fmt.Fprintf(&sb, "%d\\. %s\n", offset+idx+1, songLink(song))
		}
	}

	if sb.Len() == 0 {
		embed.Description = "Queue is empty."
	} else {
		embed.Description = sb.String()
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Page %d/%d | %d queued", output.CurrentPage, output.TotalPages,
			output.TotalSongs),
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func songLink(song domain.Song) string {
	if song.PageURL != "" {
		return fmt.Sprintf("[%s](%s)", song.Title, song.PageURL)
	}
	return fmt.Sprintf("**%s**", song.Title)
}

// displayName returns the effective display name for a guild member.
// Priority: guild nickname, then global display name, then username.
func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
