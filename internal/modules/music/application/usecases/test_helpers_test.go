package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/maestro-bot/maestro/internal/modules/music/application/ports"
	"github.com/maestro-bot/maestro/internal/modules/music/domain"
)

func resolvedTrack(id string) ports.ResolvedTrack {
	return ports.ResolvedTrack{
		ID:            id,
		StreamLocator: "https://stream.example/" + id,
		Title:         "Track " + id,
		Duration:      3 * time.Minute,
		PageURL:       "https://page.example/" + id,
	}
}

func queuedSong(id string) domain.Song {
	return domain.Song{
		ID:            id,
		StreamLocator: "https://stream.example/" + id,
		Title:         "Track " + id,
	}
}

type mockRegistry struct {
	mu      sync.Mutex
	states  map[snowflake.ID]*domain.PlayerState
	removed []snowflake.ID
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{states: make(map[snowflake.ID]*domain.PlayerState)}
}

func (m *mockRegistry) GetOrCreate(guildID snowflake.ID) *domain.PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[guildID]
	if !ok {
		state = domain.NewPlayerState(guildID)
		m.states[guildID] = state
	}
	return state
}

func (m *mockRegistry) Get(guildID snowflake.ID) *domain.PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[guildID]
}

func (m *mockRegistry) Remove(guildID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, guildID)
	m.removed = append(m.removed, guildID)
}

type playCall struct {
	guildID  snowflake.ID
	locator  string
	complete ports.CompletionFunc
	done     bool
}

// mockSink records dispatches and lets tests fire completion callbacks
// explicitly, honoring the contract that completions never run inside Play.
type mockSink struct {
	mu sync.Mutex

	connected map[snowflake.ID]bool
	playing   map[snowflake.ID]bool
	paused    map[snowflake.ID]bool

	plays       []*playCall
	stops       []snowflake.ID
	disconnects []snowflake.ID
	moves       []snowflake.ID

	connectErr error
	moveErr    error
	playErr    error
	stopErr    error
	pauseErr   error
	resumeErr  error
}

func newMockSink() *mockSink {
	return &mockSink{
		connected: make(map[snowflake.ID]bool),
		playing:   make(map[snowflake.ID]bool),
		paused:    make(map[snowflake.ID]bool),
	}
}

func (m *mockSink) Connect(_ context.Context, guildID, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected[guildID] = true
	return nil
}

func (m *mockSink) MoveTo(_ context.Context, guildID, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.moveErr != nil {
		return m.moveErr
	}
	m.moves = append(m.moves, guildID)
	return nil
}

func (m *mockSink) Disconnect(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected[guildID] = false
	m.playing[guildID] = false
	m.paused[guildID] = false
	m.disconnects = append(m.disconnects, guildID)
	return nil
}

func (m *mockSink) Play(
	_ context.Context,
	guildID snowflake.ID,
	locator string,
	onComplete ports.CompletionFunc,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	m.playing[guildID] = true
	m.paused[guildID] = false
	m.plays = append(m.plays, &playCall{guildID: guildID, locator: locator, complete: onComplete})
	return nil
}

func (m *mockSink) Stop(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopErr != nil {
		return m.stopErr
	}
	m.playing[guildID] = false
	m.paused[guildID] = false
	m.stops = append(m.stops, guildID)
	return nil
}

func (m *mockSink) Pause(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.paused[guildID] = true
	return nil
}

func (m *mockSink) Resume(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resumeErr != nil {
		return m.resumeErr
	}
	m.paused[guildID] = false
	return nil
}

func (m *mockSink) IsConnected(guildID snowflake.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected[guildID]
}

func (m *mockSink) IsPlaying(guildID snowflake.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing[guildID]
}

func (m *mockSink) IsPaused(guildID snowflake.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused[guildID]
}

// playLocators returns the locators dispatched for a guild, in order.
func (m *mockSink) playLocators(guildID snowflake.ID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var locators []string
	for _, p := range m.plays {
		if p.guildID == guildID {
			locators = append(locators, p.locator)
		}
	}
	return locators
}

// completeNext fires the completion callback of the oldest unfinished play
// for the guild, after Play has returned, as the sink contract requires.
func (m *mockSink) completeNext(t *testing.T, guildID snowflake.ID, err error) {
	t.Helper()

	m.mu.Lock()
	var call *playCall
	for _, p := range m.plays {
		if p.guildID == guildID && !p.done {
			call = p
			break
		}
	}
	if call != nil {
		call.done = true
		m.playing[guildID] = false
	}
	m.mu.Unlock()

	if call == nil {
		t.Fatalf("no pending play to complete for guild %d", guildID)
	}
	call.complete(err)
}

type mockResolver struct {
	tracks []ports.ResolvedTrack
	err    error
}

func (m *mockResolver) Resolve(_ context.Context, _ string) ([]ports.ResolvedTrack, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tracks, nil
}

type notification struct {
	channelID snowflake.ID
	title     string
	message   string
}

type mockNotifier struct {
	mu         sync.Mutex
	nowPlaying []notification
	errors     []notification
	sendErr    error
}

func (m *mockNotifier) NowPlaying(channelID snowflake.ID, song domain.Song) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nowPlaying = append(m.nowPlaying, notification{channelID: channelID, title: song.Title})
	return m.sendErr
}

func (m *mockNotifier) PlaybackError(channelID snowflake.ID, title, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, notification{channelID: channelID, title: title, message: message})
	return m.sendErr
}

func (m *mockNotifier) errorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

type mockVoiceState struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceState) UserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

// fixture bundles a fully wired PlaybackService with its mocks.
type fixture struct {
	service  *PlaybackService
	registry *mockRegistry
	sink     *mockSink
	resolver *mockResolver
	notifier *mockNotifier
	voice    *mockVoiceState
}

func newFixture(cfg Config) *fixture {
	// Keep dispatch retries fast so failure-path tests finish promptly.
	if cfg.DispatchRetryDelay == 0 {
		cfg.DispatchRetryDelay = 5 * time.Millisecond
	}
	f := &fixture{
		registry: newMockRegistry(),
		sink:     newMockSink(),
		resolver: &mockResolver{},
		notifier: &mockNotifier{},
		voice:    &mockVoiceState{channels: make(map[snowflake.ID]snowflake.ID)},
	}
	f.service = NewPlaybackService(f.registry, f.sink, f.resolver, f.notifier, f.voice, cfg)
	return f
}

// playingState seeds a guild that is connected and currently playing the
// given songs, with the first one dispatched to the sink.
func (f *fixture) playingState(
	t *testing.T,
	guildID snowflake.ID,
	mode domain.LoopMode,
	ids ...string,
) *domain.PlayerState {
	t.Helper()

	f.sink.connected[guildID] = true
	state := f.registry.GetOrCreate(guildID)
	state.Lock()
	state.SetLoopMode(mode)
	for _, id := range ids {
		state.Queue.PushBack(queuedSong(id))
	}
	f.service.advanceLocked(context.Background(), state)
	state.Unlock()
	return state
}

// eventually polls until cond holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
