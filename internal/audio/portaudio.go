package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/tevino/abool"
)

type paHost struct {
	closed *abool.AtomicBool
}

// NewHost initializes PortAudio and returns a Host backed by it. Close
// must be called to release the platform library.
func NewHost() (Host, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &paHost{closed: abool.New()}, nil
}

func (h *paHost) Devices() ([]Device, error) {
	if h.closed.IsSet() {
		return nil, ErrHostClosed
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	defaultDevice, _ := portaudio.DefaultInputDevice()

	result := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			result = append(result, snapshot(d, d == defaultDevice))
		}
	}

	return result, nil
}

func (h *paHost) DefaultDevice() (Device, error) {
	if h.closed.IsSet() {
		return Device{}, ErrHostClosed
	}

	d, err := portaudio.DefaultInputDevice()
	if err != nil {
		return Device{}, fmt.Errorf("failed to get default input device: %w", err)
	}
	return snapshot(d, true), nil
}

func (h *paHost) OpenStream(cfg DeviceConfig, onFrame FrameFunc, onErr ErrorFunc) (Stream, error) {
	if h.closed.IsSet() {
		return nil, ErrHostClosed
	}

	device, err := h.lookup(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: cfg.Channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}

	// Interleaved float32 callback. Overflow flags become asynchronous
	// errors; the frame itself is still delivered.
	cb := func(in []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		if flags&portaudio.InputOverflow != 0 && onErr != nil {
			onErr(ErrOverflow)
		}
		onFrame(in)
	}

	stream, err := portaudio.OpenStream(params, cb)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}

	return stream, nil
}

func (h *paHost) Close() error {
	if h.closed.SetToIf(false, true) {
		return portaudio.Terminate()
	}
	return nil
}

// lookup finds the platform device for an ID, falling back to the default
// input device when the ID is empty.
func (h *paHost) lookup(deviceID string) (*portaudio.DeviceInfo, error) {
	if deviceID == "" {
		d, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default input device: %w", err)
		}
		return d, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == deviceID && d.MaxInputChannels > 0 {
			return d, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoDevice, deviceID)
}

func snapshot(d *portaudio.DeviceInfo, isDefault bool) Device {
	return Device{
		ID:                d.Name,
		Name:              d.Name,
		MaxInputChannels:  d.MaxInputChannels,
		DefaultSampleRate: d.DefaultSampleRate,
		Default:           isDefault,
	}
}
