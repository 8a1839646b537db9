package music

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"

	"github.com/maestro-bot/maestro/internal/bot"
	"github.com/maestro-bot/maestro/internal/modules/music/application/ports"
	"github.com/maestro-bot/maestro/internal/modules/music/application/usecases"
	"github.com/maestro-bot/maestro/internal/modules/music/infrastructure"
	"github.com/maestro-bot/maestro/internal/modules/music/presentation"
)

func init() {
	bot.Register(&Module{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*Module)(nil)

// Module provides per-guild music playback commands.
type Module struct {
	config   *Config
	lavalink *infrastructure.LavalinkClient
	playback *usecases.PlaybackService
	handlers *presentation.Handlers
}

// Name returns the module name.
func (m *Module) Name() string {
	return "music"
}

// Commands returns the slash commands for this module.
func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *Module) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":   m.handlers.HandlePlay,
		"skip":   m.handlers.HandleSkip,
		"stop":   m.handlers.HandleStop,
		"pause":  m.handlers.HandlePause,
		"resume": m.handlers.HandleResume,
		"loop":   m.handlers.HandleLoop,
		"queue":  m.handlers.HandleQueue,
	}
}

// EventHandlers returns the gateway event handlers for this module. Voice
// events are forwarded to Lavalink; external disconnects tear down guild
// state through the playback service.
func (m *Module) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(_ *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			if m.lavalink != nil {
				m.lavalink.OnVoiceServerUpdate(event)
			}
		},
		func(_ *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			if m.lavalink != nil {
				m.lavalink.OnVoiceStateUpdate(event)
			}
		},
	}
}

// LoadConfig loads module configuration from environment variables.
func (m *Module) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	if cfg.Resolver != ResolverLavalink && cfg.Resolver != ResolverYtdlp {
		return fmt.Errorf("unknown resolver %q", cfg.Resolver)
	}
	m.config = cfg
	return nil
}

// Init wires the playback service, its Lavalink backend, and the command
// handlers.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("music module requires a Discord session")
	}

	lavalink, err := infrastructure.NewLavalinkClient(deps.Session, infrastructure.LavalinkConfig{
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
	})
	if err != nil {
		return err
	}
	m.lavalink = lavalink

	var resolver ports.Resolver = lavalink
	if m.config.Resolver == ResolverYtdlp {
		resolver = infrastructure.NewYtdlpResolver(m.config.PlaylistLimit)
	}

	m.playback = usecases.NewPlaybackService(
		infrastructure.NewMemoryRegistry(),
		lavalink,
		resolver,
		infrastructure.NewEmbedNotifier(deps.Session),
		infrastructure.NewSessionVoiceState(deps.Session),
		usecases.Config{
			ConnectTimeout: m.config.ConnectTimeout,
			AutoLeaveDelay: m.config.AutoLeaveDelay,
			PlaylistLimit:  m.config.PlaylistLimit,
		},
	)
	lavalink.SetDisconnectedHandler(m.playback.HandleVoiceDisconnected)

	m.handlers = presentation.NewHandlers(m.playback)

	slog.Info("music module initialized",
		"resolver", m.config.Resolver,
		"auto_leave", m.config.AutoLeaveDelay,
	)

	return nil
}

// Shutdown closes the Lavalink connection.
func (m *Module) Shutdown() error {
	if m.lavalink != nil {
		m.lavalink.Close()
	}
	return nil
}
