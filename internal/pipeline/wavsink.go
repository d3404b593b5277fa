package pipeline

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// pcmScale is the int16 maximum magnitude. Encoding multiplies by it,
// decoding divides by it.
const pcmScale = 1 << 15

// PCMFromFloat converts a normalized sample to its 16-bit integer value:
// scale by the int16 maximum magnitude, truncate toward zero, clamp to the
// representable range. Truncation, not round-to-nearest, is deliberate;
// the round-trip tests encode this rule.
func PCMFromFloat(s float32) int {
	v := float64(s) * pcmScale
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int(v)
}

// FloatFromPCM is the symmetric decode conversion.
func FloatFromPCM(v int) float32 {
	return float32(float64(v) / pcmScale)
}

// WavSink encodes frames as 16-bit linear PCM into a WAV file. Writes go
// straight to the unbuffered file handle, so each processed batch is on
// disk before the next callback. The RIFF length fields stay zero until
// Cleanup patches them; a crash mid-recording leaves a file only readers
// that infer length from byte count can open.
type WavSink struct {
	file   *os.File
	enc    *wav.Encoder
	buf    *audio.IntBuffer
	closed bool
}

// NewWavSink creates the file at path and prepares an encoder for it.
// The path must not exist yet; a collision is reported, not truncated.
func NewWavSink(path string, sampleRate, channels int) (*WavSink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return &WavSink{
		file: f,
		enc:  wav.NewEncoder(f, sampleRate, 16, channels, 1),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: channels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: 16,
		},
	}, nil
}

func (w *WavSink) Process(frame []float32) error {
	if w.closed {
		return ErrSinkClosed
	}

	if cap(w.buf.Data) < len(frame) {
		w.buf.Data = make([]int, len(frame))
	}
	w.buf.Data = w.buf.Data[:len(frame)]
	for i, s := range frame {
		w.buf.Data[i] = PCMFromFloat(s)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write samples to %s: %w", w.file.Name(), err)
	}
	return nil
}

// Cleanup finalizes the RIFF header and closes the file. Must be the last
// operation on the sink.
func (w *WavSink) Cleanup() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.enc.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to finalize %s: %w", w.file.Name(), err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", w.file.Name(), err)
	}
	return nil
}
