package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"github.com/maestro-bot/maestro/internal/modules/music/application/ports"
)

// pendingVoiceConnection tracks a join in flight. ready is closed once both
// VoiceStateUpdate and VoiceServerUpdate arrived.
type pendingVoiceConnection struct {
	mu             sync.Mutex
	hasVoiceState  bool
	hasVoiceServer bool
	ready          chan struct{}
}

func (p *pendingVoiceConnection) onEvent(isVoiceState bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if isVoiceState {
		p.hasVoiceState = true
	} else {
		p.hasVoiceServer = true
	}

	if p.hasVoiceState && p.hasVoiceServer {
		select {
		case <-p.ready:
		default:
			close(p.ready)
		}
	}
}

// voiceEventBuffer holds voice events until both VoiceStateUpdate and
// VoiceServerUpdate are present, so Lavalink never sees a partial voice state
// when Discord delivers them out of order.
type voiceEventBuffer struct {
	mu sync.Mutex

	hasVoiceState bool
	channelID     *snowflake.ID
	sessionID     string

	hasVoiceServer bool
	token          string
	endpoint       string
}

func (b *voiceEventBuffer) setVoiceState(channelID *snowflake.ID, sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceState = true
	b.channelID = channelID
	b.sessionID = sessionID

	return b.hasVoiceState && b.hasVoiceServer
}

func (b *voiceEventBuffer) setVoiceServer(token, endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceServer = true
	b.token = token
	b.endpoint = endpoint

	return b.hasVoiceState && b.hasVoiceServer
}

// take returns the buffered data and resets the buffer.
func (b *voiceEventBuffer) take() (channelID *snowflake.ID, sessionID, token, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channelID = b.channelID
	sessionID = b.sessionID
	token = b.token
	endpoint = b.endpoint

	b.hasVoiceState = false
	b.hasVoiceServer = false
	b.channelID = nil
	b.sessionID = ""
	b.token = ""
	b.endpoint = ""

	return
}

// completionEntry is the pending completion callback for a guild's current
// play dispatch, tagged with the encoded track it was registered for. Only the
// matching track's end event consumes it, so an end event trailing behind a
// replacing dispatch can never complete the wrong track. A fatal exception or
// stuck event records its error here; the following end event carries it out.
type completionEntry struct {
	encoded string
	err     error
	fn      ports.CompletionFunc
}

// LavalinkConfig contains Lavalink node connection settings.
type LavalinkConfig struct {
	Address  string
	Password string
}

// LavalinkClient drives playback through a Lavalink node. It implements both
// the voice sink and the track resolver: resolved tracks carry the
// Lavalink-encoded track as their stream locator, and plain URL locators
// (from other resolvers) are loaded through the node on dispatch.
type LavalinkClient struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID

	pendingMu sync.Mutex
	pending   map[snowflake.ID]*pendingVoiceConnection

	voiceBufferMu sync.Mutex
	voiceBuffers  map[snowflake.ID]*voiceEventBuffer

	completionMu sync.Mutex
	completions  map[snowflake.ID]*completionEntry

	// onDisconnected is invoked when the bot leaves a voice channel for any
	// reason, including being kicked or the channel being deleted.
	onDisconnected func(guildID snowflake.ID)
}

// NewLavalinkClient connects to the configured Lavalink node.
func NewLavalinkClient(
	session *discordgo.Session,
	config LavalinkConfig,
) (*LavalinkClient, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	client := &LavalinkClient{
		session:      session,
		botID:        botID,
		pending:      make(map[snowflake.ID]*pendingVoiceConnection),
		voiceBuffers: make(map[snowflake.ID]*voiceEventBuffer),
		completions:  make(map[snowflake.ID]*completionEntry),
	}

	link := disgolink.New(botID,
		disgolink.WithListenerFunc(client.onTrackStart),
		disgolink.WithListenerFunc(client.onTrackEnd),
		disgolink.WithListenerFunc(client.onTrackException),
		disgolink.WithListenerFunc(client.onTrackStuck),
	)
	client.link = link

	node, err := link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return client, nil
}

// Close shuts down the Lavalink connection.
func (c *LavalinkClient) Close() {
	c.link.Close()
}

// SetDisconnectedHandler registers the callback for voice disconnects that
// were not requested through Disconnect.
func (c *LavalinkClient) SetDisconnectedHandler(handler func(guildID snowflake.ID)) {
	c.onDisconnected = handler
}

// Connect joins a voice channel and waits until both voice events arrived and
// were forwarded to Lavalink. The wait is bounded by ctx.
func (c *LavalinkClient) Connect(ctx context.Context, guildID, channelID snowflake.ID) error {
	pending := &pendingVoiceConnection{
		ready: make(chan struct{}),
	}

	c.pendingMu.Lock()
	c.pending[guildID] = pending
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, guildID)
		c.pendingMu.Unlock()
	}()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-pending.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for voice connection: %w", ctx.Err())
	}
}

// MoveTo moves the voice connection to another channel. The gateway resends
// both voice events for the new channel, so the mechanics match Connect.
func (c *LavalinkClient) MoveTo(ctx context.Context, guildID, channelID snowflake.ID) error {
	return c.Connect(ctx, guildID, channelID)
}

// Disconnect destroys the Lavalink player and leaves the voice channel.
func (c *LavalinkClient) Disconnect(_ context.Context, guildID snowflake.ID) error {
	if player := c.link.ExistingPlayer(guildID); player != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, true)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play starts playback of the given locator. Lavalink-encoded locators are
// played directly; URL locators are loaded through the node first. onComplete
// fires from the Lavalink event listeners, never from within this call.
func (c *LavalinkClient) Play(
	ctx context.Context,
	guildID snowflake.ID,
	locator string,
	onComplete ports.CompletionFunc,
) error {
	encoded := locator
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		var err error
		encoded, err = c.loadEncoded(ctx, locator)
		if err != nil {
			return err
		}
	}

	c.completionMu.Lock()
	c.completions[guildID] = &completionEntry{encoded: encoded, fn: onComplete}
	c.completionMu.Unlock()

	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithEncodedTrack(encoded)); err != nil {
		c.completionMu.Lock()
		delete(c.completions, guildID)
		c.completionMu.Unlock()
		return fmt.Errorf("failed to play track: %w", err)
	}

	return nil
}

// loadEncoded resolves a URL locator to a Lavalink-encoded track.
func (c *LavalinkClient) loadEncoded(ctx context.Context, url string) (string, error) {
	node := c.link.BestNode()
	if node == nil {
		return "", errors.New("no available Lavalink node")
	}

	result, err := node.LoadTracks(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to load %q: %w", url, err)
	}

	switch data := result.Data.(type) {
	case lavalink.Track:
		return data.Encoded, nil
	case lavalink.Playlist:
		if len(data.Tracks) == 0 {
			return "", fmt.Errorf("empty playlist for %q", url)
		}
		return data.Tracks[0].Encoded, nil
	case lavalink.Search:
		if len(data) == 0 {
			return "", fmt.Errorf("no results for %q", url)
		}
		return data[0].Encoded, nil
	case lavalink.Exception:
		return "", fmt.Errorf("failed to load %q: %s", url, data.Message)
	default:
		return "", fmt.Errorf("nothing found for %q", url)
	}
}

// Stop aborts the current playback. The track end event fires the completion
// callback.
func (c *LavalinkClient) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}
	return nil
}

// Pause pauses the current playback.
func (c *LavalinkClient) Pause(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithPaused(true)); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	return nil
}

// Resume resumes the current playback.
func (c *LavalinkClient) Resume(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}
	return nil
}

// IsConnected reports whether the guild has a live voice session.
func (c *LavalinkClient) IsConnected(guildID snowflake.ID) bool {
	player := c.link.ExistingPlayer(guildID)
	return player != nil && player.ChannelID() != nil
}

// IsPlaying reports whether a track is bound and not paused.
func (c *LavalinkClient) IsPlaying(guildID snowflake.ID) bool {
	player := c.link.ExistingPlayer(guildID)
	return player != nil && player.Track() != nil && !player.Paused()
}

// IsPaused reports whether a track is bound and paused.
func (c *LavalinkClient) IsPaused(guildID snowflake.ID) bool {
	player := c.link.ExistingPlayer(guildID)
	return player != nil && player.Track() != nil && player.Paused()
}

// Resolve loads tracks for a URL or search query. Search queries return the
// top result; playlist URLs return every entry, uncapped (the caller caps).
func (c *LavalinkClient) Resolve(ctx context.Context, query string) ([]ports.ResolvedTrack, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, errors.New("no available Lavalink node")
	}

	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		query = "ytsearch:" + query
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	switch data := result.Data.(type) {
	case lavalink.Track:
		return []ports.ResolvedTrack{convertLavalinkTrack(data)}, nil

	case lavalink.Playlist:
		tracks := make([]ports.ResolvedTrack, 0, len(data.Tracks))
		for _, track := range data.Tracks {
			tracks = append(tracks, convertLavalinkTrack(track))
		}
		return tracks, nil

	case lavalink.Search:
		if len(data) == 0 {
			return nil, nil
		}
		return []ports.ResolvedTrack{convertLavalinkTrack(data[0])}, nil

	case lavalink.Empty:
		return nil, nil

	case lavalink.Exception:
		return nil, fmt.Errorf("failed to load tracks: %s", data.Message)

	default:
		return nil, nil
	}
}

func convertLavalinkTrack(track lavalink.Track) ports.ResolvedTrack {
	info := track.Info

	var thumbnailURL string
	if info.ArtworkURL != nil {
		thumbnailURL = *info.ArtworkURL
	}
	var pageURL string
	if info.URI != nil {
		pageURL = *info.URI
	}

	return ports.ResolvedTrack{
		ID:            info.Identifier,
		StreamLocator: track.Encoded,
		Title:         info.Title,
		ThumbnailURL:  thumbnailURL,
		Duration:      time.Duration(info.Length) * time.Millisecond,
		PageURL:       pageURL,
	}
}

// fireCompletion consumes and invokes the pending completion for the guild,
// provided it was registered for the given encoded track. No-op for a stale or
// mismatched event. The callback re-enters the playback state machine and may
// dispatch the next track, so it runs off the node event loop.
func (c *LavalinkClient) fireCompletion(guildID snowflake.ID, encoded string, err error) {
	c.completionMu.Lock()
	entry := c.completions[guildID]
	if entry == nil || entry.encoded != encoded {
		c.completionMu.Unlock()
		return
	}
	delete(c.completions, guildID)
	if entry.err != nil {
		err = entry.err
	}
	c.completionMu.Unlock()

	go entry.fn(err)
}

// recordTrackError attaches an error to the pending completion for the guild
// without consuming it. The track end event that follows carries it out.
func (c *LavalinkClient) recordTrackError(guildID snowflake.ID, encoded string, err error) {
	c.completionMu.Lock()
	defer c.completionMu.Unlock()

	if entry := c.completions[guildID]; entry != nil && entry.encoded == encoded {
		entry.err = err
	}
}

func (c *LavalinkClient) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkClient) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	c.handleTrackEnd(player.GuildID(), event)
}

func (c *LavalinkClient) handleTrackEnd(guildID snowflake.ID, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", guildID, "reason", event.Reason)

	switch event.Reason {
	case lavalink.TrackEndReasonFinished, lavalink.TrackEndReasonStopped,
		lavalink.TrackEndReasonCleanup:
		c.fireCompletion(guildID, event.Track.Encoded, nil)
	case lavalink.TrackEndReasonLoadFailed:
		c.fireCompletion(guildID, event.Track.Encoded, errors.New("track failed to load"))
	case lavalink.TrackEndReasonReplaced:
		// The replacing dispatch installed its own completion; only its own
		// end event may consume it.
	}
}

// onTrackException does not fire the completion itself: the node follows a
// fatal exception with a track end event, and firing twice on that pair would
// complete whatever dispatch happens to be pending by then.
func (c *LavalinkClient) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	guildID := player.GuildID()
	slog.Warn("track exception", "guild", guildID, "error", event.Exception.Message)
	c.recordTrackError(guildID, event.Track.Encoded,
		fmt.Errorf("playback failed: %s", event.Exception.Message))
}

func (c *LavalinkClient) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	guildID := player.GuildID()
	slog.Warn("track stuck", "guild", guildID, "threshold", event.Threshold)
	c.recordTrackError(guildID, event.Track.Encoded,
		fmt.Errorf("playback stuck for %s", event.Threshold))
}

// OnVoiceServerUpdate forwards Discord voice server updates to Lavalink. Must
// be wired into the Discord event handlers.
func (c *LavalinkClient) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	buffer := c.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceServer(event.Token, event.Endpoint) {
		c.forwardBufferedVoiceEvents(guildID, buffer)
	}

	c.pendingMu.Lock()
	pending := c.pending[guildID]
	c.pendingMu.Unlock()
	if pending != nil {
		pending.onEvent(false)
	}
}

// OnVoiceStateUpdate forwards the bot's own voice state updates to Lavalink
// and detects external disconnects. Must be wired into the Discord event
// handlers.
func (c *LavalinkClient) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	// A nil channel means the bot left or was removed; no VoiceServerUpdate
	// will follow.
	if channelID == nil {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.clearVoiceBuffer(guildID)
		if c.onDisconnected != nil {
			go c.onDisconnected(guildID)
		}
		return
	}

	buffer := c.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceState(channelID, event.SessionID) {
		c.forwardBufferedVoiceEvents(guildID, buffer)
	}

	c.pendingMu.Lock()
	pending := c.pending[guildID]
	c.pendingMu.Unlock()
	if pending != nil {
		pending.onEvent(true)
	}
}

func (c *LavalinkClient) getOrCreateVoiceBuffer(guildID snowflake.ID) *voiceEventBuffer {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()

	buffer, exists := c.voiceBuffers[guildID]
	if !exists {
		buffer = &voiceEventBuffer{}
		c.voiceBuffers[guildID] = buffer
	}
	return buffer
}

func (c *LavalinkClient) clearVoiceBuffer(guildID snowflake.ID) {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()
	delete(c.voiceBuffers, guildID)
}

func (c *LavalinkClient) forwardBufferedVoiceEvents(
	guildID snowflake.ID,
	buffer *voiceEventBuffer,
) {
	channelID, sessionID, token, endpoint := buffer.take()

	slog.Debug("forwarding buffered voice events to Lavalink",
		"guild", guildID,
		"channel", channelID,
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, channelID, sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, token, endpoint)
}

// Ensure LavalinkClient implements the playback ports.
var (
	_ ports.VoiceSink = (*LavalinkClient)(nil)
	_ ports.Resolver  = (*LavalinkClient)(nil)
)
