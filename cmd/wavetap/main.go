// Wavetap records from an audio input device into per-session WAV clips.
//
// It loads configuration, starts a capture session, and records until
// interrupted or a --duration elapses. With --meter it draws a live
// waveform line built from the same sample store and viewport transforms
// a full review UI would poll.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/wavetap/wavetap/internal/audio"
	"github.com/wavetap/wavetap/internal/config"
	"github.com/wavetap/wavetap/internal/logging"
	"github.com/wavetap/wavetap/internal/permissions"
	"github.com/wavetap/wavetap/internal/pipeline"
	"github.com/wavetap/wavetap/internal/session"
	"github.com/wavetap/wavetap/internal/viewport"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

const (
	meterWidth   = 64
	meterSeconds = 5
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "", "Path to config TOML (default: the platform config dir)")
		baseDir     = pflag.String("base-dir", "", "Directory holding session directories")
		deviceID    = pflag.StringP("device", "d", "", "Input device name")
		rate        = pflag.Float64("rate", 0, "Sample rate in Hz (0 uses the device default)")
		channels    = pflag.Int("channels", 0, "Input channel count (0 records mono)")
		frames      = pflag.Int("frames", 0, "Frames per buffer (0 lets the platform choose)")
		duration    = pflag.DurationP("duration", "t", 0, "Stop after this long (0 records until interrupted)")
		listDevices = pflag.BoolP("list-devices", "l", false, "List input devices and exit")
		meter       = pflag.Bool("meter", false, "Draw a live waveform line while recording")
		version     = pflag.Bool("version", false, "Print the version and exit")
	)
	pflag.Parse()

	if *version {
		fmt.Printf("wavetap %s (%s)\n", Version, Commit)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		// Use default logger if config fails to load
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.NewWithLevel(cfg.Logging.Level)

	// Flags override the settings file for one run.
	if *baseDir != "" {
		cfg.Session.BaseDir = *baseDir
	}
	if *deviceID != "" {
		cfg.Audio.DeviceID = *deviceID
	}
	if *rate != 0 {
		cfg.Audio.SampleRate = *rate
	}
	if *channels != 0 {
		cfg.Audio.Channels = *channels
	}
	if *frames != 0 {
		cfg.Audio.FramesPerBuffer = *frames
	}

	// macOS requires explicit microphone approval before capture works
	if err := permissions.EnsureMicrophone(); err != nil {
		log.Fatal().Err(err).Msg("Required permissions not granted")
	}

	host, err := audio.NewHost()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize audio")
	}
	defer host.Close()

	if *listDevices {
		if err := printInputDevices(host); err != nil {
			log.Fatal().Err(err).Msg("Failed to enumerate devices")
		}
		return
	}

	device, err := pickDevice(host, cfg.Audio.DeviceID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to find input device")
	}
	streamCfg := audio.ResolveConfig(audio.DeviceConfig{
		DeviceID:        cfg.Audio.DeviceID,
		Channels:        cfg.Audio.Channels,
		SampleRate:      cfg.Audio.SampleRate,
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
	}, device)

	manager, err := session.New(session.Config{
		BaseDir: cfg.Session.BaseDir,
		Host:    host,
		Logger:  log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session")
	}
	defer manager.Close()

	if err := manager.Configure(streamCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure session")
	}
	rec, err := manager.RecordNewClip()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start recording")
	}

	log.Info().
		Str("path", rec.Path()).
		Str("device", streamCfg.DeviceID).
		Float64("rate", streamCfg.SampleRate).
		Int("channels", streamCfg.Channels).
		Msg("Recording; press Ctrl-C to stop")

	// The meter view follows live data, sized so the window covers the
	// last few seconds at the configured rate.
	view := viewport.New(meterWidth, 1)
	view.SetScale(streamCfg.SampleRate*float64(streamCfg.Channels)*meterSeconds/meterWidth, 0)

	// Setup shutdown signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	captureFailed := false
	running := true
	for running {
		select {
		case <-sigChan:
			running = false
		case <-timeout:
			running = false
		case <-ticker.C:
			if err := manager.CaptureErr(); err != nil {
				log.Error().Err(err).Msg("Capture failed")
				captureFailed = true
				running = false
				continue
			}
			status := fmt.Sprintf("%v  %d samples", rec.Duration().Truncate(time.Second), rec.Store().Len())
			if *meter {
				fmt.Printf("\r|%s| %s ", meterLine(view, rec.Store()), status)
			} else {
				fmt.Printf("\r%s ", status)
			}
		}
	}
	fmt.Println()

	if err := manager.StopRecording(); err != nil {
		log.Fatal().Err(err).Msg("Failed to finalize recording")
	}
	log.Info().
		Str("path", rec.Path()).
		Int("samples", rec.Store().Len()).
		Dur("duration", rec.Duration()).
		Msg("Recording saved")

	if captureFailed {
		os.Exit(1)
	}
}

// loadConfig reads the settings file, from path when given and from the
// platform location otherwise.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// pickDevice resolves a configured device name, falling back to the
// system default input when none is set.
func pickDevice(host audio.Host, id string) (audio.Device, error) {
	if id == "" {
		return host.DefaultDevice()
	}

	devices, err := host.Devices()
	if err != nil {
		return audio.Device{}, err
	}
	for _, d := range devices {
		if d.ID == id || d.Name == id {
			return d, nil
		}
	}
	return audio.Device{}, fmt.Errorf("%w: %s", audio.ErrNoDevice, id)
}

func printInputDevices(host audio.Host) error {
	devices, err := host.Devices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("no input devices found")
		return nil
	}

	for _, d := range devices {
		marker := " "
		if d.Default {
			marker = "*"
		}
		fmt.Printf("%s %-40s %d ch  %6.0f Hz\n", marker, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
	}
	return nil
}

// meterGlyphs orders glyphs by peak amplitude, quietest first.
const meterGlyphs = " .:-=+*#%@"

// meterLine renders one text row of the store's tail, newest samples at
// the right edge, each column summarized by its amplitude extremes. It
// reads the store exactly the way a graphical timeline would: track the
// length, then slice per visible column until the data runs out.
func meterLine(view *viewport.View, store *pipeline.SampleStore) string {
	view.Track(store.Len())

	var b strings.Builder
	for x := 0; x < view.Width(); x++ {
		r := view.ColumnRange(x)
		if r.Empty() {
			b.WriteByte(' ')
			continue
		}
		lo, hi := viewport.BucketMinMax(store.Slice(r.Start, r.End))
		b.WriteByte(meterGlyph(lo, hi))
	}
	return b.String()
}

func meterGlyph(lo, hi float32) byte {
	amp := hi
	if -lo > amp {
		amp = -lo
	}
	if amp > 1 {
		amp = 1
	}
	if amp < 0 {
		amp = 0
	}
	return meterGlyphs[int(float64(amp)*float64(len(meterGlyphs)-1))]
}
