package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vtimeline/internal/logger"
)

// SimConfig configures a simulated surface.
type SimConfig struct {
	// Durations maps source locators to their natural length in seconds.
	Durations map[string]float64
	// DefaultDuration is used for locators missing from Durations. When it
	// is zero, loading an unknown locator fails, which is how tests and the
	// demo exercise load-failure paths.
	DefaultDuration float64
	// LoadDelay makes every Load take this long, simulating network or
	// decoder latency. Load honours context cancellation during the delay.
	LoadDelay time.Duration
	// Clock overrides the wall clock, used by tests. Defaults to time.Now.
	Clock func() time.Time
	// Logger defaults to a nop logger.
	Logger logger.Logger
}

// Sim is a clock-driven Surface with no real media behind it. While playing
// it advances its position in wall-clock time and stops at the source's
// natural duration, the way a real video element behaves at end of media.
type Sim struct {
	now       func() time.Time
	durations map[string]float64
	defDur    float64
	loadDelay time.Duration
	logger    logger.Logger

	mu       sync.Mutex
	loaded   string
	duration float64
	playing  bool
	position float64   // position at anchor
	anchor   time.Time // when position was last fixed
}

// NewSim creates a simulated surface.
func NewSim(cfg SimConfig) *Sim {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Sim{
		now:       now,
		durations: cfg.Durations,
		defDur:    cfg.DefaultDuration,
		loadDelay: cfg.LoadDelay,
		logger:    log,
	}
}

// Load opens a locator after the configured delay. The previously loaded
// source is kept when the new one is unknown, mirroring a video element that
// keeps its last good frame on a failed load.
func (s *Sim) Load(ctx context.Context, locator string) error {
	if s.loadDelay > 0 {
		timer := time.NewTimer(s.loadDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	dur, ok := s.durations[locator]
	if !ok {
		if s.defDur <= 0 {
			return fmt.Errorf("unknown source %q", locator)
		}
		dur = s.defDur
	}

	s.mu.Lock()
	s.loaded = locator
	s.duration = dur
	s.playing = false
	s.position = 0
	s.anchor = s.now()
	s.mu.Unlock()

	s.logger.Debugf("sim surface loaded %q (%.3fs)", locator, dur)
	return nil
}

// Seek moves the playback position, clamped to the source bounds.
func (s *Sim) Seek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded == "" {
		return fmt.Errorf("seek with no source loaded")
	}
	if seconds < 0 {
		seconds = 0
	}
	if seconds > s.duration {
		seconds = s.duration
	}
	s.position = seconds
	s.anchor = s.now()
	return nil
}

// Play resumes native playback.
func (s *Sim) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded == "" {
		return fmt.Errorf("play with no source loaded")
	}
	if !s.playing {
		s.position = s.positionLocked()
		s.anchor = s.now()
		s.playing = true
	}
	return nil
}

// Pause suspends native playback.
func (s *Sim) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		s.position = s.positionLocked()
		s.playing = false
	}
}

// CurrentTime reports the playback position in seconds.
func (s *Sim) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

// Duration reports the loaded source's length, or 0 when nothing is loaded.
func (s *Sim) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Playing reports whether native playback is running.
func (s *Sim) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Source reports the currently loaded locator, "" when none.
func (s *Sim) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Sim) positionLocked() float64 {
	if !s.playing {
		return s.position
	}
	pos := s.position + s.now().Sub(s.anchor).Seconds()
	if pos >= s.duration {
		// Natural end of media: the surface stops on its own.
		return s.duration
	}
	return pos
}
