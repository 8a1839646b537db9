package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/maestro-bot/maestro/internal/modules/music/application/ports"
	"github.com/maestro-bot/maestro/internal/modules/music/domain"
)

// Defaults for the playback configuration.
const (
	DefaultConnectTimeout     = 15 * time.Second
	DefaultAutoLeaveDelay     = 120 * time.Second
	DefaultPlaylistLimit      = 10
	DefaultDispatchRetryDelay = 3 * time.Second

	// errorMessageLimit bounds error text forwarded to text channels.
	errorMessageLimit = 200
)

// Config tunes the playback service.
type Config struct {
	ConnectTimeout time.Duration
	AutoLeaveDelay time.Duration
	PlaylistLimit  int

	// DispatchRetryDelay spaces out advance attempts after a failed play
	// dispatch, so a sink that rejects every dispatch is not hammered.
	DispatchRetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.AutoLeaveDelay <= 0 {
		c.AutoLeaveDelay = DefaultAutoLeaveDelay
	}
	if c.PlaylistLimit <= 0 {
		c.PlaylistLimit = DefaultPlaylistLimit
	}
	if c.DispatchRetryDelay <= 0 {
		c.DispatchRetryDelay = DefaultDispatchRetryDelay
	}
	return c
}

// PlaybackService is the per-guild playback state machine. It decides what
// plays next from the queue and loop mode, drives the voice sink, reacts to
// completion callbacks, and re-enters itself until the queue is exhausted.
//
// Every state transition for a guild runs under that guild's lock; transitions
// for different guilds proceed in parallel. Resolution and voice connection
// happen before the lock is taken. The completion callback contract of the
// voice sink (never synchronous, exactly once per Play) makes it safe to
// dispatch Play and Stop while the lock is held.
type PlaybackService struct {
	registry   domain.Registry
	sink       ports.VoiceSink
	resolver   ports.Resolver
	notifier   ports.Notifier
	voiceState ports.VoiceStateProvider
	idle       *AutoLeaveTimer
	cfg        Config
}

// NewPlaybackService creates a PlaybackService and its auto-leave timer.
func NewPlaybackService(
	registry domain.Registry,
	sink ports.VoiceSink,
	resolver ports.Resolver,
	notifier ports.Notifier,
	voiceState ports.VoiceStateProvider,
	cfg Config,
) *PlaybackService {
	s := &PlaybackService{
		registry:   registry,
		sink:       sink,
		resolver:   resolver,
		notifier:   notifier,
		voiceState: voiceState,
		cfg:        cfg.withDefaults(),
	}
	s.idle = NewAutoLeaveTimer(s.cfg.AutoLeaveDelay, s.autoLeave)
	return s
}

// IdleTimer exposes the auto-leave timer, mainly for wiring and tests.
func (s *PlaybackService) IdleTimer() *AutoLeaveTimer {
	return s.idle
}

// EnqueueRequestInput carries a user's play request.
type EnqueueRequestInput struct {
	GuildID            snowflake.ID
	UserID             snowflake.ID
	Query              string
	RequesterName      string
	RequesterAvatarURL string
	OriginChannelID    snowflake.ID
}

// EnqueueRequestOutput reports what was queued. QueueLength is the queue
// length after insertion, for "added at position N" feedback; it is 0 when
// playback started immediately.
type EnqueueRequestOutput struct {
	Songs       []domain.Song
	QueueLength int
	Started     bool
}

// EnqueueRequest resolves a query, ensures a voice connection to the
// requester's channel, and appends the resolved songs to the guild's queue.
// If the guild is idle, playback starts immediately.
func (s *PlaybackService) EnqueueRequest(
	ctx context.Context,
	input EnqueueRequestInput,
) (*EnqueueRequestOutput, error) {
	if err := s.ensureVoice(ctx, input.GuildID, input.UserID); err != nil {
		return nil, err
	}

	// Resolution is slow (seconds) and must run outside the guild lock.
	songs, err := s.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	state := s.registry.GetOrCreate(input.GuildID)
	state.Lock()
	defer state.Unlock()

	length := state.Queue.PushBack(songs...)
	s.idle.Cancel(input.GuildID)

	if state.IsIdle() && !s.sink.IsPlaying(input.GuildID) {
		s.advanceLocked(ctx, state)
		return &EnqueueRequestOutput{Songs: songs, Started: true}, nil
	}

	return &EnqueueRequestOutput{Songs: songs, QueueLength: length}, nil
}

// resolve turns the query into playable songs with requester metadata
// attached. Entries without a usable stream locator are dropped with a
// warning; the whole batch failing is an error.
func (s *PlaybackService) resolve(
	ctx context.Context,
	input EnqueueRequestInput,
) ([]domain.Song, error) {
	tracks, err := s.resolver.Resolve(ctx, input.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", input.Query, err)
	}

	if len(tracks) > s.cfg.PlaylistLimit {
		tracks = tracks[:s.cfg.PlaylistLimit]
	}

	songs := make([]domain.Song, 0, len(tracks))
	for _, track := range tracks {
		song := domain.Song{
			ID:                 track.ID,
			StreamLocator:      track.StreamLocator,
			Title:              track.Title,
			ThumbnailURL:       track.ThumbnailURL,
			Duration:           track.Duration,
			PageURL:            track.PageURL,
			RequesterName:      input.RequesterName,
			RequesterAvatarURL: input.RequesterAvatarURL,
			OriginChannelID:    input.OriginChannelID,
		}
		if !song.Playable() {
			slog.Warn("dropping unplayable resolved track",
				"guild", input.GuildID,
				"title", track.Title,
			)
			continue
		}
		songs = append(songs, song)
	}

	if len(songs) == 0 {
		return nil, ErrNoResults
	}
	return songs, nil
}

// ensureVoice connects the sink to the requester's voice channel, moving an
// existing connection if the user is elsewhere. The wait is bounded by the
// configured connect timeout; on failure no guild state is mutated.
func (s *PlaybackService) ensureVoice(
	ctx context.Context,
	guildID, userID snowflake.ID,
) error {
	channelID, err := s.voiceState.UserVoiceChannel(guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to look up voice state: %w", err)
	}
	if channelID == 0 {
		return ErrUserNotInVoice
	}

	connectCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	if s.sink.IsConnected(guildID) {
		state := s.registry.GetOrCreate(guildID)
		state.Lock()
		current := state.VoiceChannelID()
		state.Unlock()

		if current == channelID {
			return nil
		}
		if err := s.sink.MoveTo(connectCtx, guildID, channelID); err != nil {
			return fmt.Errorf("%w: %v", ErrConnectFailed, err)
		}
	} else {
		if err := s.sink.Connect(connectCtx, guildID, channelID); err != nil {
			return fmt.Errorf("%w: %v", ErrConnectFailed, err)
		}
	}

	state := s.registry.GetOrCreate(guildID)
	state.Lock()
	state.SetVoiceChannel(channelID)
	state.Unlock()

	return nil
}

// advanceLocked runs the advance algorithm with the guild lock held. It picks
// the next song, dispatches it to the sink with a completion callback bound to
// the guild, and announces it; with nothing left to play it clears the current
// song and arms the auto-leave timer.
func (s *PlaybackService) advanceLocked(ctx context.Context, state *domain.PlayerState) {
	guildID := state.GuildID()

	next := state.NextSong()
	if next == nil {
		slog.Debug("queue exhausted, arming auto-leave", "guild", guildID)
		s.idle.Arm(guildID)
		return
	}

	s.idle.Cancel(guildID)
	state.SetPaused(false)

	song := *next
	err := s.sink.Play(ctx, guildID, song.StreamLocator, func(playErr error) {
		s.onPlaybackDone(guildID, song, playErr)
	})
	if err != nil {
		// No completion callback will fire for a failed dispatch, so the
		// error path re-enters advance itself, off this goroutine and after
		// a delay. The skip request consumes any replay branch, so a song
		// that cannot be dispatched is not retried in a tight loop.
		state.RequestSkip()
		go func() {
			time.Sleep(s.cfg.DispatchRetryDelay)
			s.onPlaybackDone(guildID, song, fmt.Errorf("failed to start playback: %w", err))
		}()
		return
	}

	slog.Info("now playing", "guild", guildID, "title", song.Title)
	go s.announce(song)
}

// onPlaybackDone is the single advance path for every play dispatch: natural
// completion, playback error, and skip-triggered stop all land here exactly
// once.
func (s *PlaybackService) onPlaybackDone(guildID snowflake.ID, song domain.Song, playErr error) {
	if playErr != nil {
		slog.Error("playback failed",
			"guild", guildID,
			"title", song.Title,
			"error", playErr,
		)
		if err := s.notifier.PlaybackError(
			song.OriginChannelID,
			song.Title,
			truncate(playErr.Error(), errorMessageLimit),
		); err != nil {
			slog.Warn("failed to send playback error notification",
				"guild", guildID,
				"channel", song.OriginChannelID,
				"error", err,
			)
		}
	}

	// The guild may have been stopped while the song was playing; a removed
	// guild has nothing to advance.
	state := s.registry.Get(guildID)
	if state == nil {
		return
	}

	state.Lock()
	defer state.Unlock()
	s.advanceLocked(context.Background(), state)
}

// announce sends the now-playing notification to the song's origin channel.
// Failures are logged once and swallowed.
func (s *PlaybackService) announce(song domain.Song) {
	if err := s.notifier.NowPlaying(song.OriginChannelID, song); err != nil {
		slog.Warn("failed to send now playing notification",
			"channel", song.OriginChannelID,
			"title", song.Title,
			"error", err,
		)
	}
}

// SkipOutput reports the skipped song.
type SkipOutput struct {
	SkippedTitle string
}

// Skip stops the current song. The stop triggers the completion callback,
// which drives the single advance path; Skip never advances directly.
func (s *PlaybackService) Skip(ctx context.Context, guildID snowflake.ID) (*SkipOutput, error) {
	state := s.registry.Get(guildID)
	if state == nil {
		return nil, ErrNothingPlaying
	}

	state.Lock()
	defer state.Unlock()

	current := state.Current()
	if current == nil {
		return nil, ErrNothingPlaying
	}
	title := current.Title

	s.idle.Cancel(guildID)

	if err := s.sink.Stop(ctx, guildID); err != nil {
		return nil, fmt.Errorf("failed to stop playback: %w", err)
	}
	// Only mark the skip once the stop dispatch succeeded; the completion
	// callback cannot run until the lock is released.
	state.RequestSkip()

	return &SkipOutput{SkippedTitle: title}, nil
}

// Stop clears the queue, current song, and loop mode, stops and disconnects
// the sink, and removes the guild from the registry.
func (s *PlaybackService) Stop(ctx context.Context, guildID snowflake.ID) error {
	state := s.registry.Get(guildID)
	if state == nil || !s.sink.IsConnected(guildID) {
		return ErrNotConnected
	}

	state.Lock()
	state.Reset()
	s.idle.Cancel(guildID)
	state.Unlock()

	if s.sink.IsPlaying(guildID) || s.sink.IsPaused(guildID) {
		if err := s.sink.Stop(ctx, guildID); err != nil {
			slog.Warn("failed to stop playback during stop", "guild", guildID, "error", err)
		}
	}

	if err := s.sink.Disconnect(ctx, guildID); err != nil {
		slog.Warn("failed to disconnect voice", "guild", guildID, "error", err)
	}

	s.idle.Cancel(guildID)
	s.registry.Remove(guildID)

	return nil
}

// Pause pauses the current playback.
func (s *PlaybackService) Pause(ctx context.Context, guildID snowflake.ID) error {
	state := s.registry.Get(guildID)
	if state == nil {
		return ErrNotConnected
	}

	state.Lock()
	defer state.Unlock()

	if state.IsIdle() {
		return ErrNothingPlaying
	}
	if state.IsPaused() {
		return ErrAlreadyPaused
	}

	if err := s.sink.Pause(ctx, guildID); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	state.SetPaused(true)

	return nil
}

// Resume resumes paused playback.
func (s *PlaybackService) Resume(ctx context.Context, guildID snowflake.ID) error {
	state := s.registry.Get(guildID)
	if state == nil {
		return ErrNotConnected
	}

	state.Lock()
	defer state.Unlock()

	if state.IsIdle() {
		return ErrNothingPlaying
	}
	if !state.IsPaused() {
		return ErrNotPaused
	}

	if err := s.sink.Resume(ctx, guildID); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}
	state.SetPaused(false)
	s.idle.Cancel(guildID)

	return nil
}

// SetLoopMode sets the guild's loop mode. Pure state mutation; the currently
// playing song is unaffected.
func (s *PlaybackService) SetLoopMode(guildID snowflake.ID, mode domain.LoopMode) {
	state := s.registry.GetOrCreate(guildID)
	state.Lock()
	defer state.Unlock()
	state.SetLoopMode(mode)
}

// HandleVoiceDisconnected tears down guild state after the sink lost its
// connection externally (kicked, channel deleted, gateway drop).
func (s *PlaybackService) HandleVoiceDisconnected(guildID snowflake.ID) {
	state := s.registry.Get(guildID)
	if state == nil {
		return
	}

	slog.Info("voice connection lost, clearing guild state", "guild", guildID)

	state.Lock()
	state.Reset()
	state.Unlock()

	s.idle.Cancel(guildID)
	s.registry.Remove(guildID)
}

// autoLeave is the timer expiry action: disconnect an idle voice session and
// drop the guild's state. Activity that raced the timer aborts the leave.
func (s *PlaybackService) autoLeave(guildID snowflake.ID) {
	state := s.registry.Get(guildID)
	if state == nil {
		return
	}

	state.Lock()
	busy := !state.IsIdle() || !state.Queue.IsEmpty()
	state.Unlock()
	if busy {
		return
	}

	slog.Info("voice session idle, auto-leaving", "guild", guildID)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConnectTimeout)
	defer cancel()
	if err := s.sink.Disconnect(ctx, guildID); err != nil {
		slog.Warn("failed to disconnect idle voice session", "guild", guildID, "error", err)
	}

	s.registry.Remove(guildID)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
