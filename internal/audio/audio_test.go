package audio

import "testing"

func TestResolveConfigFillsDefaults(t *testing.T) {
	dev := Device{
		ID:                "Built-in Microphone",
		Name:              "Built-in Microphone",
		MaxInputChannels:  2,
		DefaultSampleRate: 44100,
		Default:           true,
	}

	got := ResolveConfig(DeviceConfig{}, dev)

	if got.DeviceID != dev.ID {
		t.Errorf("expected device id %q, got %q", dev.ID, got.DeviceID)
	}
	if got.Channels != 1 {
		t.Errorf("expected mono default, got %d channels", got.Channels)
	}
	if got.SampleRate != 44100 {
		t.Errorf("expected device rate 44100, got %f", got.SampleRate)
	}
	if got.FramesPerBuffer != 0 {
		t.Errorf("expected unspecified buffer size, got %d", got.FramesPerBuffer)
	}
}

func TestResolveConfigKeepsExplicitValues(t *testing.T) {
	dev := Device{ID: "USB Mic", MaxInputChannels: 2, DefaultSampleRate: 48000}
	cfg := DeviceConfig{
		DeviceID:        "USB Mic",
		Channels:        2,
		SampleRate:      96000,
		FramesPerBuffer: 256,
	}

	got := ResolveConfig(cfg, dev)

	if got != cfg {
		t.Fatalf("explicit config should pass through unchanged: got %+v", got)
	}
}

func TestResolveConfigCapsChannels(t *testing.T) {
	dev := Device{ID: "Mono Mic", MaxInputChannels: 1, DefaultSampleRate: 48000}

	got := ResolveConfig(DeviceConfig{Channels: 8}, dev)

	if got.Channels != 1 {
		t.Errorf("expected channels capped to 1, got %d", got.Channels)
	}
}

func TestDeviceConfigComparable(t *testing.T) {
	a := DeviceConfig{DeviceID: "x", Channels: 1, SampleRate: 48000}
	b := DeviceConfig{DeviceID: "x", Channels: 1, SampleRate: 48000}

	if a != b {
		t.Fatal("identical configs should compare equal")
	}

	b.SampleRate = 44100
	if a == b {
		t.Fatal("different configs should not compare equal")
	}
}
