// Package audio hides the platform audio API behind a small host/stream
// surface so capture code can be driven by fakes in tests.
package audio

import "errors"

var (
	// ErrNoDevice is returned when a configured device cannot be found.
	ErrNoDevice = errors.New("audio: no such input device")
	// ErrHostClosed is returned by operations on a terminated host.
	ErrHostClosed = errors.New("audio: host closed")
	// ErrOverflow reports that the platform dropped input samples.
	ErrOverflow = errors.New("audio: input overflow, samples dropped")
)

// Device is a point-in-time snapshot of an input device. Enumeration
// results are plain data so callers never hold platform handles.
type Device struct {
	ID                string
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	Default           bool
}

// DeviceConfig pins down the shape of a capture stream. Zero values mean
// "use the device default" and are filled in by ResolveConfig. The struct
// is comparable so callers can detect no-op reconfiguration with ==.
type DeviceConfig struct {
	DeviceID        string
	Channels        int
	SampleRate      float64
	FramesPerBuffer int
}

// FrameFunc receives a batch of interleaved float32 samples on the audio
// thread. The slice is only valid for the duration of the call.
type FrameFunc func(frame []float32)

// ErrorFunc receives asynchronous device errors on the audio thread.
type ErrorFunc func(err error)

// Stream is an open capture stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Host enumerates input devices and opens capture streams.
type Host interface {
	Devices() ([]Device, error)
	DefaultDevice() (Device, error)
	OpenStream(cfg DeviceConfig, onFrame FrameFunc, onErr ErrorFunc) (Stream, error)
	Close() error
}

// ResolveConfig fills zero-valued fields of cfg from the device's defaults:
// mono capture, the device's preferred sample rate, and an unspecified
// buffer size (the platform picks one). Channel counts are capped at what
// the device offers.
func ResolveConfig(cfg DeviceConfig, dev Device) DeviceConfig {
	if cfg.DeviceID == "" {
		cfg.DeviceID = dev.ID
	}
	if cfg.Channels == 0 {
		cfg.Channels = 1
	}
	if dev.MaxInputChannels > 0 && cfg.Channels > dev.MaxInputChannels {
		cfg.Channels = dev.MaxInputChannels
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = dev.DefaultSampleRate
	}
	return cfg
}
