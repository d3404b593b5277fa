// Package pipeline moves audio frames from a capture source through a
// linear chain of sinks. Process calls cascade synchronously on the audio
// callback thread, so every stage appends or encodes and returns without
// blocking. A source owns its next sink outright; the chain never branches.
package pipeline

import "errors"

var (
	// ErrCannotPause is returned by sources whose device stream has no
	// pause transition.
	ErrCannotPause = errors.New("pipeline: source does not support pausing")
	// ErrIncomplete is returned by Play when no sink is attached.
	ErrIncomplete = errors.New("pipeline: source has no sink attached")
	// ErrSinkClosed is returned by Process after Cleanup.
	ErrSinkClosed = errors.New("pipeline: sink already cleaned up")
)

// State describes a source's transport position.
type State int

const (
	Stopped State = iota
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Sink consumes frames of interleaved float32 samples.
type Sink interface {
	// Process consumes one frame. The slice is only valid for the
	// duration of the call; implementations copy what they keep.
	Process(frame []float32) error
	// Cleanup flushes and finalizes the sink. It is the last call made
	// to a sink; Process afterwards is an error.
	Cleanup() error
}

// Source produces frames and pushes them into its sink chain.
type Source interface {
	// Play starts the source. It fails with ErrIncomplete when no sink
	// is attached and is a no-op when already playing.
	Play() error
	// Pause fails with ErrCannotPause when CanPause reports false.
	Pause() error
	// Stop tears the source down. Idempotent; stopping a source that
	// never started is a no-op.
	Stop() error
	CanPause() bool
	IsRecorder() bool
	State() State
	SetNext(Sink)
	Next() Sink
}
