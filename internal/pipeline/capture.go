package pipeline

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tevino/abool"

	"github.com/wavetap/wavetap/internal/audio"
)

// CaptureSource binds one device configuration to a live hardware stream
// and pushes its frames into the sink chain. The control surface (Play,
// Stop, State) belongs to the presentation side; OnFrame and error
// delivery run on the audio thread.
type CaptureSource struct {
	host audio.Host
	cfg  audio.DeviceConfig
	log  zerolog.Logger

	next   Sink
	stream audio.Stream

	// failed is the audio-thread fast check; errMu guards the slot.
	// Only the first error is kept.
	failed  *abool.AtomicBool
	errMu   sync.Mutex
	lastErr error
}

func NewCaptureSource(host audio.Host, cfg audio.DeviceConfig, log zerolog.Logger) *CaptureSource {
	return &CaptureSource{
		host:   host,
		cfg:    cfg,
		log:    log,
		failed: abool.New(),
	}
}

func (c *CaptureSource) SetNext(next Sink) { c.next = next }
func (c *CaptureSource) Next() Sink        { return c.next }

func (c *CaptureSource) CanPause() bool   { return false }
func (c *CaptureSource) IsRecorder() bool { return true }

// Config returns the device configuration the source was built from.
func (c *CaptureSource) Config() audio.DeviceConfig { return c.cfg }

func (c *CaptureSource) Play() error {
	if c.stream != nil {
		return nil
	}
	if c.next == nil {
		return ErrIncomplete
	}

	stream, err := c.host.OpenStream(c.cfg, c.onFrame, c.recordErr)
	if err != nil {
		return fmt.Errorf("failed to open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start capture stream: %w", err)
	}

	c.stream = stream
	c.log.Debug().
		Str("device", c.cfg.DeviceID).
		Float64("rate", c.cfg.SampleRate).
		Int("channels", c.cfg.Channels).
		Msg("Capture stream started")
	return nil
}

func (c *CaptureSource) Pause() error {
	return fmt.Errorf("%w: %s", ErrCannotPause, c.cfg.DeviceID)
}

// Stop tears the stream down. The platform stop blocks until in-flight
// callbacks drain, so it is safe to call while the audio thread is
// mid-frame. Teardown errors are logged, never returned.
func (c *CaptureSource) Stop() error {
	if c.stream == nil {
		return nil
	}

	if err := c.stream.Stop(); err != nil {
		c.log.Warn().Err(err).Msg("Failed to stop capture stream")
	}
	if err := c.stream.Close(); err != nil {
		c.log.Warn().Err(err).Msg("Failed to close capture stream")
	}
	c.stream = nil
	return nil
}

func (c *CaptureSource) State() State {
	if c.stream != nil {
		return Playing
	}
	return Stopped
}

// Err returns the first error recorded on the audio thread, if any. The
// presentation side polls this; frames are dropped once it is non-nil.
func (c *CaptureSource) Err() error {
	if c.failed.IsNotSet() {
		return nil
	}
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.lastErr
}

// onFrame runs on the audio thread.
func (c *CaptureSource) onFrame(frame []float32) {
	if c.failed.IsSet() {
		return
	}
	if err := c.next.Process(frame); err != nil {
		c.recordErr(err)
	}
}

// recordErr keeps the first error and never panics across the callback
// boundary.
func (c *CaptureSource) recordErr(err error) {
	if err == nil {
		return
	}
	c.errMu.Lock()
	first := c.lastErr == nil
	if first {
		c.lastErr = err
		c.failed.Set()
	}
	c.errMu.Unlock()

	if first {
		c.log.Error().Err(err).Msg("Capture stream error")
	}
}
