package bot

import "github.com/bwmarrin/discordgo"

// InteractionHandler handles one slash command interaction.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is a discordgo gateway event handler. It must match one of
// discordgo's handler signatures, e.g.
// func(s *discordgo.Session, e *discordgo.VoiceStateUpdate).
type EventHandler any

// ModuleDependencies carries shared resources handed to modules during Init.
// The session is open and identified by the time Init runs.
type ModuleDependencies struct {
	Session *discordgo.Session
}

// Module is a self-contained feature of the bot: a set of slash commands,
// their handlers, and any gateway event handlers the feature needs.
type Module interface {
	// Name returns the unique identifier for this module.
	Name() string

	// Commands returns the slash commands that this module provides.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers maps command names to their handlers.
	CommandHandlers() map[string]InteractionHandler

	// EventHandlers returns gateway event handlers for this module.
	EventHandlers() []EventHandler

	// Init initializes the module with the provided dependencies.
	Init(deps ModuleDependencies) error

	// Shutdown gracefully shuts down the module.
	Shutdown() error
}

// ConfigurableModule is an optional interface for modules with their own
// configuration. LoadConfig runs before the Discord connection is opened, so
// misconfiguration fails fast.
type ConfigurableModule interface {
	LoadConfig() error
}
