package presentation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/maestro-bot/maestro/internal/bot"
	"github.com/maestro-bot/maestro/internal/modules/status/application"
)

// Handler handles the /status command.
type Handler struct {
	reporter *application.Reporter
}

// NewHandler creates a Handler backed by the given reporter.
func NewHandler(reporter *application.Reporter) *Handler {
	return &Handler{reporter: reporter}
}

// Handle builds a status report and sends it as an embed.
func (h *Handler) Handle(
	s *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guilds := 0
	if s != nil && s.State != nil {
		guilds = len(s.State.Guilds)
	}

	report := h.reporter.Execute(guilds)

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title: "Status",
					Fields: []*discordgo.MessageEmbedField{
						{Name: "Version", Value: report.Version, Inline: true},
						{Name: "Uptime", Value: report.Uptime.String(), Inline: true},
						{Name: "Servers", Value: fmt.Sprintf("%d", report.Guilds), Inline: true},
					},
				},
			},
		},
	})
}
