// Package session owns one run's recording directory and its clips. It
// enforces the single-writable-clip rule, carries the active device
// configuration, and is the presentation layer's only entry point for
// start/stop/configure operations.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wavetap/wavetap/internal/audio"
	"github.com/wavetap/wavetap/internal/clip"
	"github.com/wavetap/wavetap/internal/pipeline"
)

var (
	// ErrAlreadyRecording is returned when a recording is in progress.
	ErrAlreadyRecording = errors.New("session: already recording")
	// ErrNotConfigured is returned before any device has been configured.
	ErrNotConfigured = errors.New("session: no audio configuration provided")
	// ErrClipExists is returned on a clip id collision.
	ErrClipExists = errors.New("session: clip already exists")
	// ErrNoSuchClip is returned for lookups of unknown ids.
	ErrNoSuchClip = errors.New("session: no such clip")
)

// dirLayout names the per-run directory. Second precision is enough; clip
// ids carry the sub-second part.
const dirLayout = "2006-01-02_15-04-05"

// Config collects the manager's collaborators.
type Config struct {
	// BaseDir is the directory under which the run's session directory
	// is created.
	BaseDir string
	// Host opens capture streams.
	Host audio.Host
	// Clock defaults to time.Now. Injectable so tests control clip ids.
	Clock func() time.Time

	Logger zerolog.Logger
}

// Manager tracks the session's clips and the at-most-one active recording.
// All state is guarded by one mutex; methods are safe from any goroutine,
// though in practice only the presentation side calls them.
type Manager struct {
	host  audio.Host
	clock func() time.Time
	log   zerolog.Logger
	dir   string

	mu        sync.Mutex
	clips     map[clip.ID]*clip.Clip
	audioCfg  *audio.DeviceConfig
	source    *pipeline.CaptureSource
	recording *clip.Clip
}

// New creates the session directory as base/<timestamp> and scans it for
// existing clips.
func New(cfg Config) (*Manager, error) {
	if cfg.BaseDir == "" {
		return nil, errors.New("session: base directory must not be empty")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	dir := filepath.Join(cfg.BaseDir, clock().Format(dirLayout))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	m := &Manager{
		host:  cfg.Host,
		clock: clock,
		log:   cfg.Logger,
		dir:   dir,
		clips: make(map[clip.ID]*clip.Clip),
	}

	if err := m.Rescan(); err != nil {
		return nil, err
	}

	m.log.Info().Str("dir", dir).Msg("Session created")
	return m, nil
}

// Dir returns the session directory.
func (m *Manager) Dir() string { return m.dir }

// Rescan picks up WAV files that appeared in the session directory.
// Already-tracked ids are skipped, so calling it repeatedly neither
// re-decodes nor duplicates. Unresolvable file names are skipped.
func (m *Manager) Rescan() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rescanLocked()
}

func (m *Manager) rescanLocked() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to scan session directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}

		id, err := clip.IDFromPath(entry.Name())
		if err != nil {
			m.log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unresolvable clip file")
			continue
		}
		if _, ok := m.clips[id]; ok {
			continue
		}

		c, err := clip.FromFile(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			return err
		}
		m.clips[id] = c
		m.log.Debug().Str("clip", id.String()).Int("samples", c.Store().Len()).Msg("Rescanned clip")
	}

	return nil
}

// Configure installs a device configuration. An identical configuration
// is a no-op. If a recording is active it is stopped, the configuration
// swapped, and a new recording started, so a session that was recording
// keeps recording across device changes. Should the restart fail, the
// previous configuration is restored and the error returned; the stopped
// clip stays finalized either way.
func (m *Manager) Configure(cfg audio.DeviceConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.audioCfg != nil && *m.audioCfg == cfg {
		return nil
	}

	wasRecording := m.recording != nil
	if wasRecording {
		if err := m.stopRecordingLocked(); err != nil {
			return err
		}
	}

	prev := m.audioCfg
	m.audioCfg = &cfg
	m.log.Debug().
		Str("device", cfg.DeviceID).
		Float64("rate", cfg.SampleRate).
		Int("channels", cfg.Channels).
		Msg("Session configured")

	if wasRecording {
		if _, err := m.recordNewClipLocked(); err != nil {
			m.audioCfg = prev
			return err
		}
	}

	return nil
}

// RecordNewClip allocates a fresh clip and starts capturing into it. The
// clip and its pipeline are tracked only once the stream has started; a
// start failure discards the clip's file and leaves the session unchanged.
func (m *Manager) RecordNewClip() (*clip.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recordNewClipLocked()
}

func (m *Manager) recordNewClipLocked() (*clip.Clip, error) {
	if m.recording != nil {
		return nil, ErrAlreadyRecording
	}
	if m.audioCfg == nil {
		return nil, ErrNotConfigured
	}

	id := clip.NewID(m.clock())
	if _, ok := m.clips[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrClipExists, id)
	}

	c, err := clip.RecordNew(id, m.dir, int(m.audioCfg.SampleRate), m.audioCfg.Channels)
	if err != nil {
		return nil, err
	}

	source := pipeline.NewCaptureSource(m.host, *m.audioCfg, m.log)
	source.SetNext(c)
	if err := source.Play(); err != nil {
		if derr := c.Discard(); derr != nil {
			m.log.Warn().Err(derr).Str("clip", id.String()).Msg("Failed to discard clip after start failure")
		}
		return nil, err
	}

	m.clips[id] = c
	m.source = source
	m.recording = c

	m.log.Info().
		Str("clip", id.String()).
		Str("device", m.audioCfg.DeviceID).
		Msg("Recording started")
	return c, nil
}

// StopRecording stops the active capture and finalizes its clip, which
// stays tracked as ReadOnly. A no-op when nothing is recording.
func (m *Manager) StopRecording() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopRecordingLocked()
}

func (m *Manager) stopRecordingLocked() error {
	if m.recording == nil {
		return nil
	}

	source, rec := m.source, m.recording
	m.source = nil
	m.recording = nil

	// Stream stop drains in-flight callbacks before the encoder is
	// finalized, so no write can race the header patch.
	source.Stop()
	if err := rec.Finalize(); err != nil {
		return err
	}

	m.log.Info().
		Str("clip", rec.ID().String()).
		Int("samples", rec.Store().Len()).
		Msg("Recording stopped")
	return nil
}

// IsRecording reports whether a clip is currently being captured.
func (m *Manager) IsRecording() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recording != nil
}

// IsConfigured reports whether a device configuration is installed.
func (m *Manager) IsConfigured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.audioCfg != nil
}

// Configuration returns the active device configuration, if any.
func (m *Manager) Configuration() (audio.DeviceConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.audioCfg == nil {
		return audio.DeviceConfig{}, false
	}
	return *m.audioCfg, true
}

// RecordingClip returns the clip being captured, if any.
func (m *Manager) RecordingClip() (*clip.Clip, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recording, m.recording != nil
}

// CaptureErr polls the active capture pipeline for an asynchronous device
// or write error. Nil while idle.
func (m *Manager) CaptureErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.source == nil {
		return nil
	}
	return m.source.Err()
}

// Clip looks up a tracked clip by id.
func (m *Manager) Clip(id clip.ID) (*clip.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clips[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchClip, id)
	}
	return c, nil
}

// ClipIDs returns every tracked id in lexical (= chronological) order.
func (m *Manager) ClipIDs() []clip.ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]clip.ID, 0, len(m.clips))
	for id := range m.clips {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clips returns every tracked clip in id order.
func (m *Manager) Clips() []*clip.Clip {
	m.mu.Lock()
	defer m.mu.Unlock()

	clips := make([]*clip.Clip, 0, len(m.clips))
	for _, c := range m.clips {
		clips = append(clips, c)
	}
	sort.Slice(clips, func(i, j int) bool { return clips[i].ID() < clips[j].ID() })
	return clips
}

// DropClip stops tracking a clip and removes its file. The active
// recording cannot be dropped.
func (m *Manager) DropClip(id clip.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clips[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchClip, id)
	}
	if c == m.recording {
		return ErrAlreadyRecording
	}

	if err := c.Discard(); err != nil {
		return err
	}
	delete(m.clips, id)
	m.log.Info().Str("clip", id.String()).Msg("Clip dropped")
	return nil
}

// Close stops any active recording.
func (m *Manager) Close() error {
	return m.StopRecording()
}
