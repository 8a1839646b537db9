package usecases

import "errors"

// Precondition and boundary errors for the music module. Resolver and voice
// sink failures are converted into these kinds where they occur; none of them
// propagate as unhandled faults.
var (
	// ErrNotConnected is returned when an operation requires an active voice session.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the requesting user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrConnectFailed is returned when joining a voice channel fails or times out.
	ErrConnectFailed = errors.New("could not connect to the voice channel")

	// ErrNothingPlaying is returned when no song is currently playing.
	ErrNothingPlaying = errors.New("nothing is currently playing")

	// ErrAlreadyPaused is returned when trying to pause while already paused.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrNotPaused is returned when trying to resume while not paused.
	ErrNotPaused = errors.New("playback is not paused")

	// ErrNoResults is returned when resolution yields nothing playable.
	ErrNoResults = errors.New("no playable tracks found")
)
