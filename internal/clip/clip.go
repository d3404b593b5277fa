// Package clip models one recorded-or-loaded audio unit: its identity, its
// on-disk WAV file, and its in-memory sample store. A clip is Writable
// while recording into it and ReadOnly forever after.
package clip

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/wavetap/wavetap/internal/pipeline"
)

var (
	// ErrReadOnly is returned when writing to a finalized clip.
	ErrReadOnly = errors.New("clip: read-only")
	// ErrBadName is returned when a file name cannot become a clip ID.
	ErrBadName = errors.New("clip: cannot resolve id from file name")
)

// idLayout gives sub-second precision so ids are practically unique and
// lexical order matches chronological order.
const idLayout = "2006-01-02_15-04-05.000000000"

// ID identifies a clip. It doubles as the file's base name, so it must
// stay a valid path component.
type ID string

// NewID derives an ID from a timestamp.
func NewID(t time.Time) ID {
	return ID(t.Format(idLayout))
}

// IDFromPath derives an ID from a file's base name, extension stripped.
func IDFromPath(path string) (ID, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if stem == "" || stem == "." || stem == ".." || !utf8.ValidString(stem) {
		return "", fmt.Errorf("%w: %q", ErrBadName, path)
	}
	if strings.ContainsRune(stem, os.PathSeparator) || strings.ContainsRune(stem, '/') {
		return "", fmt.Errorf("%w: %q", ErrBadName, path)
	}

	return ID(stem), nil
}

func (id ID) String() string { return string(id) }

// Filename returns the WAV file name for this id.
func (id ID) Filename() string { return string(id) + ".wav" }

// Clip couples a sample store with the file it was recorded to or loaded
// from. The write chain exists only while the clip is Writable; the store
// stays readable from any thread for the clip's whole life.
type Clip struct {
	id    ID
	path  string
	store *pipeline.SampleStore

	rate     int
	channels int

	mu    sync.Mutex
	chain pipeline.Sink
}

// RecordNew creates a Writable clip: an empty store and a fresh WAV file
// at dir/<id>.wav. Fails if the path already exists.
func RecordNew(id ID, dir string, sampleRate, channels int) (*Clip, error) {
	path := filepath.Join(dir, id.Filename())

	store := pipeline.NewSampleStore()
	encoder, err := pipeline.NewWavSink(path, sampleRate, channels)
	if err != nil {
		return nil, err
	}

	return &Clip{
		id:       id,
		path:     path,
		store:    store,
		rate:     sampleRate,
		channels: channels,
		chain:    pipeline.NewBufferSink(store, encoder),
	}, nil
}

// FromFile loads an existing WAV file into a ReadOnly clip. The whole
// file is decoded up front; there is no streaming load.
func FromFile(path string) (*Clip, error) {
	id, err := IDFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid WAV file", path)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("failed to locate PCM data in %s: %w", path, err)
	}

	format := dec.Format()
	bitDepth := int(dec.SampleBitDepth())
	if bitDepth == 0 {
		return nil, fmt.Errorf("unknown bit depth in %s", path)
	}
	bytesPerSample := (bitDepth-1)/8 + 1
	nsamples := int(dec.PCMLen()) / bytesPerSample

	buf := &goaudio.IntBuffer{
		Format:         format,
		Data:           make([]int, nsamples),
		SourceBitDepth: bitDepth,
	}
	n, err := dec.PCMBuffer(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	scale := float64(int(1) << (bitDepth - 1))
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = float32(float64(buf.Data[i]) / scale)
	}

	store := pipeline.NewSampleStore()
	store.Append(samples)

	return &Clip{
		id:       id,
		path:     path,
		store:    store,
		rate:     format.SampleRate,
		channels: format.NumChannels,
	}, nil
}

func (c *Clip) ID() ID       { return c.id }
func (c *Clip) Path() string { return c.path }

// Store exposes the sample store for presentation-side reads.
func (c *Clip) Store() *pipeline.SampleStore { return c.store }

func (c *Clip) SampleRate() int { return c.rate }
func (c *Clip) Channels() int   { return c.channels }

// Duration reports the captured length, derived from the store.
func (c *Clip) Duration() time.Duration {
	if c.rate <= 0 || c.channels <= 0 {
		return 0
	}
	frames := c.store.Len() / c.channels
	return time.Duration(float64(frames) / float64(c.rate) * float64(time.Second))
}

// Writable reports whether the clip still accepts samples.
func (c *Clip) Writable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chain != nil
}

// WriteSamples appends a batch to the in-memory store and forwards it to
// the encoder in the same call. Calling it on a ReadOnly clip is an
// error, never a silent drop.
func (c *Clip) WriteSamples(batch []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chain == nil {
		return fmt.Errorf("%w: %s", ErrReadOnly, c.id)
	}
	return c.chain.Process(batch)
}

// Finalize flushes the encoder, patches the file header, and flips the
// clip to ReadOnly. Idempotent; the clip is ReadOnly afterwards even if
// finalizing reported an error.
func (c *Clip) Finalize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chain == nil {
		return nil
	}
	chain := c.chain
	c.chain = nil

	if err := chain.Cleanup(); err != nil {
		return fmt.Errorf("failed to finalize clip %s: %w", c.id, err)
	}
	return nil
}

// Discard finalizes the clip and removes its file.
func (c *Clip) Discard() error {
	if err := c.Finalize(); err != nil {
		return err
	}
	if err := os.Remove(c.path); err != nil {
		return fmt.Errorf("failed to remove clip %s: %w", c.id, err)
	}
	return nil
}

// Process lets a clip terminate a pipeline chain directly.
func (c *Clip) Process(frame []float32) error { return c.WriteSamples(frame) }

// Cleanup finalizes the clip when the owning pipeline tears down.
func (c *Clip) Cleanup() error { return c.Finalize() }
