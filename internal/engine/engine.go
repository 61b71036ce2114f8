// Package engine implements the virtual timeline playback engine: a
// position-driven scheduler that keeps a frame-accurate cursor moving over a
// list of trimmed, concatenated clip segments while one media surface
// follows along. The timeline clock is the single source of truth; native
// surface events never drive transitions.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"vtimeline/internal/logger"
	"vtimeline/internal/media"
	"vtimeline/internal/timeline"
)

const (
	defaultFPS          = 30.0
	defaultTickInterval = 16 * time.Millisecond // ~60Hz display refresh
	defaultDriftFrames  = 1.0
)

// FrameFunc receives the rounded current frame once per scheduling tick.
type FrameFunc func(frame int64)

// ErrorFunc receives media errors (LoadError, SeekError) surfaced by the
// engine. Callbacks are fire-and-forget and must not block.
type ErrorFunc func(err error)

// Config carries the engine's construction parameters.
type Config struct {
	// Surface is the media surface the engine drives. Required. The engine
	// assumes exclusive ownership while attached.
	Surface media.Surface
	// FPS is the project frame rate, fixed per session. Defaults to 30.
	FPS float64
	// TickInterval is the scheduling loop period. Defaults to ~60Hz.
	TickInterval time.Duration
	// DriftFrames is the drift-correction threshold in frame-equivalents.
	// The surface is only reseeked when its reported time has drifted from
	// the derived position by more than this. Defaults to 1 frame.
	DriftFrames float64
	// Logger defaults to a nop logger.
	Logger logger.Logger
}

// Engine owns the playback clock, segment lookup and surface
// synchronization. All exported methods are safe for concurrent use, though
// the expected caller is a single UI scope that also owns the lifecycle.
type Engine struct {
	fps      float64
	interval time.Duration
	driftTol float64 // seconds
	logger   logger.Logger
	now      func() time.Time

	mu           sync.Mutex
	surface      media.Surface
	segments     []timeline.Segment
	totalFrames  int64
	currentFrame float64 // sub-frame accumulator; reported rounded
	playing      bool
	loaded       bool
	reachedEnd   bool
	activeIndex  int // index of the segment backing playback, -1 in a gap
	loadedSource string
	shortSource  bool // short-source skip already reported for activeIndex
	lastTick     time.Time
	loadGen      uint64             // invalidates in-flight source loads
	loadCancel   context.CancelFunc // aborts the in-flight source load
	frameFns     []FrameFunc
	errorFns     []ErrorFunc
	destroyed    bool

	ctx      context.Context
	cancel   context.CancelFunc
	loopOnce sync.Once
}

// New creates an engine attached to the given surface. The surface carries
// no media until the first Seek or Play after Load.
func New(cfg Config) (*Engine, error) {
	if cfg.Surface == nil {
		return nil, errors.New("engine: a playback surface is required")
	}
	fps := cfg.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	drift := cfg.DriftFrames
	if drift <= 0 {
		drift = defaultDriftFrames
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		fps:         fps,
		interval:    interval,
		driftTol:    drift / fps,
		logger:      log,
		now:         time.Now,
		surface:     cfg.Surface,
		activeIndex: -1,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Load rebuilds the segment list from the given clips and recomputes the
// timeline length. The clip list is read-only to the engine and clips are
// never mutated. A position that falls out of the new range resets to 0;
// otherwise playback continues where it was. The surface is not touched
// until the next Seek or tick.
func (e *Engine) Load(clips []timeline.Clip) error {
	segments, err := timeline.Build(clips)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return ErrDestroyed
	}

	e.segments = segments
	e.totalFrames = timeline.TotalFrames(segments)
	e.loaded = true
	e.reachedEnd = false
	if e.currentFrame > float64(e.totalFrames) || e.totalFrames == 0 {
		e.currentFrame = 0
	}
	// Force re-resolution against the new segment list and abort any load
	// still in flight for the old one.
	e.activeIndex = -1
	e.shortSource = false
	e.invalidateLoadsLocked()
	if e.totalFrames == 0 {
		e.playing = false
	}

	e.logger.Infof("timeline loaded: %d segments, %d frames at %.3g fps", len(segments), e.totalFrames, e.fps)
	return nil
}

// Play starts playback and the scheduling loop. It is a no-op when already
// playing or when the timeline is empty, and fails loudly when called
// before Load.
func (e *Engine) Play() error {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return ErrDestroyed
	}
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	if e.playing || e.totalFrames == 0 {
		e.mu.Unlock()
		return nil
	}

	e.playing = true
	e.lastTick = e.now()
	if e.activeIndex >= 0 {
		seg := e.segments[e.activeIndex]
		if e.loadedSource == seg.Source {
			if err := e.surface.Play(); err != nil {
				e.logger.Warnf("surface play: %v", err)
			}
		} else {
			// A transition load was dropped while paused; start over.
			e.invalidateLoadsLocked()
			e.startLoadLocked(seg)
		}
	}
	e.mu.Unlock()

	e.startLoop()
	return nil
}

// Pause stops timeline advancement and pauses the surface. The scheduling
// loop keeps polling but no longer moves the cursor.
func (e *Engine) Pause() error {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return ErrDestroyed
	}
	if !e.playing {
		e.mu.Unlock()
		return nil
	}
	e.playing = false
	e.surface.Pause()
	e.mu.Unlock()
	return nil
}

// Seek moves the cursor, clamped to [0, totalFrames], re-resolves the
// active segment and synchronously syncs the surface regardless of play
// state. Any in-flight transition load is superseded so a stale load cannot
// snap playback back to the old position. A frame callback fires
// immediately so the UI does not wait a full tick after a manual scrub.
func (e *Engine) Seek(frame float64) error {
	if math.IsNaN(frame) || math.IsInf(frame, 0) {
		return fmt.Errorf("%w: %v", ErrNonFiniteFrame, frame)
	}

	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return ErrDestroyed
	}
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}

	if frame < 0 {
		frame = 0
	}
	if limit := float64(e.totalFrames); frame > limit {
		frame = limit
	}
	e.currentFrame = frame
	if frame < float64(e.totalFrames) {
		e.reachedEnd = false
	}
	e.invalidateLoadsLocked()

	var syncErr error
	if idx, ok := timeline.Locate(e.segments, frame); ok {
		e.activeIndex = idx
		e.shortSource = false
		seg := e.segments[idx]
		if e.loadedSource == seg.Source {
			syncErr = e.syncSurfaceLocked(seg)
		} else {
			e.startLoadLocked(seg)
		}
	} else {
		e.activeIndex = -1
		e.surface.Pause()
	}

	rounded := int64(math.Round(frame))
	fns := append([]FrameFunc(nil), e.frameFns...)
	e.mu.Unlock()

	e.report(syncErr)
	for _, fn := range fns {
		fn(rounded)
	}
	return nil
}

// OnFrameUpdate registers a callback invoked once per scheduling tick with
// the rounded current frame, and immediately after a Seek.
func (e *Engine) OnFrameUpdate(fn FrameFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed || fn == nil {
		return
	}
	e.frameFns = append(e.frameFns, fn)
}

// OnError registers a callback for surfaced media errors.
func (e *Engine) OnError(fn ErrorFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed || fn == nil {
		return
	}
	e.errorFns = append(e.errorFns, fn)
}

// Destroy stops the scheduling loop, invalidates in-flight loads, pauses
// the surface and drops all callbacks. It is idempotent; every later call
// on the engine returns ErrDestroyed.
func (e *Engine) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	e.playing = false
	e.invalidateLoadsLocked()
	e.frameFns = nil
	e.errorFns = nil
	surface := e.surface
	e.surface = nil
	e.mu.Unlock()

	e.cancel()
	if surface != nil {
		surface.Pause()
	}
	e.logger.Infof("engine destroyed")
}

// CurrentFrame reports the cursor position as a rounded frame.
func (e *Engine) CurrentFrame() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int64(math.Round(e.currentFrame))
}

// TotalFrames reports the timeline length in frames.
func (e *Engine) TotalFrames() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalFrames
}

// Playing reports whether the timeline clock is advancing.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// AtEnd reports whether the cursor sits in the terminal end-of-timeline
// state. Leaving it requires an explicit Seek or Load.
func (e *Engine) AtEnd() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reachedEnd
}

// ActiveSegment returns the segment currently backing playback. The second
// return value is false in a gap, past the end, or before the first tick.
func (e *Engine) ActiveSegment() (timeline.Segment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.activeIndex < 0 || e.activeIndex >= len(e.segments) {
		return timeline.Segment{}, false
	}
	return e.segments[e.activeIndex], true
}

// FPS reports the project frame rate.
func (e *Engine) FPS() float64 {
	return e.fps
}

// startLoop launches the scheduling loop goroutine once per engine.
func (e *Engine) startLoop() {
	e.loopOnce.Do(func() {
		go e.run()
	})
}

// run is the scheduling loop. It polls at the display-refresh interval
// until the engine is destroyed; tick itself decides whether to advance.
func (e *Engine) run() {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.tick(e.now())
		}
	}
}

// tick executes one scheduling step: advance the clock by the wall-time
// delta, handle the terminal state, resolve the active segment, sync the
// surface and emit the frame callback. The clock advances from wall time
// alone, so a slow source load never stalls the cursor.
func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	if e.destroyed || !e.playing {
		e.lastTick = now
		e.mu.Unlock()
		return
	}

	delta := now.Sub(e.lastTick)
	e.lastTick = now
	if delta < 0 {
		delta = 0
	}
	e.currentFrame += delta.Seconds() * e.fps

	if e.totalFrames > 0 && e.currentFrame >= float64(e.totalFrames) {
		// Terminal state: clamp, stop, emit one final update.
		e.currentFrame = float64(e.totalFrames)
		e.reachedEnd = true
		e.playing = false
		e.activeIndex = -1
		e.surface.Pause()
		rounded := int64(math.Round(e.currentFrame))
		fns := append([]FrameFunc(nil), e.frameFns...)
		e.mu.Unlock()

		e.logger.Infof("reached end of timeline at frame %d", rounded)
		for _, fn := range fns {
			fn(rounded)
		}
		return
	}

	var syncErr error
	if idx, ok := timeline.Locate(e.segments, e.currentFrame); !ok {
		// A gap between clips: blank the surface but keep the clock
		// running so the cursor advances through it at normal rate. The
		// pause is unconditional because a reload can drop the cursor into
		// a gap without a boundary crossing ever being observed.
		if e.activeIndex != -1 {
			e.logger.Debugf("entered gap at frame %.2f", e.currentFrame)
			e.activeIndex = -1
		}
		e.surface.Pause()
	} else if idx != e.activeIndex {
		// Segment-boundary crossing, including leaving a gap.
		e.activeIndex = idx
		e.shortSource = false
		e.invalidateLoadsLocked()
		seg := e.segments[idx]
		e.logger.Debugf("crossed into clip %q at frame %.2f", seg.ClipID, e.currentFrame)
		if e.loadedSource == seg.Source {
			// Same source already on the surface, no reload needed.
			syncErr = e.syncSurfaceLocked(seg)
		} else {
			e.startLoadLocked(seg)
		}
	} else {
		syncErr = e.correctDriftLocked(e.segments[idx])
	}

	rounded := int64(math.Round(e.currentFrame))
	fns := append([]FrameFunc(nil), e.frameFns...)
	e.mu.Unlock()

	e.report(syncErr)
	for _, fn := range fns {
		fn(rounded)
	}
}

// sourceSecondsLocked maps the current timeline frame into seg's
// source-native time.
func (e *Engine) sourceSecondsLocked(seg timeline.Segment) float64 {
	return (float64(seg.SourceIn) + (e.currentFrame - float64(seg.Start))) / e.fps
}

// syncSurfaceLocked seeks the surface into seg at the current frame and
// matches its play state. Callers hold e.mu and the loaded source matches.
func (e *Engine) syncSurfaceLocked(seg timeline.Segment) error {
	target := e.sourceSecondsLocked(seg)
	if err := e.surface.Seek(target); err != nil {
		return &SeekError{ClipID: seg.ClipID, Source: seg.Source, Seconds: target, Err: err}
	}
	if e.playing {
		if err := e.surface.Play(); err != nil {
			e.logger.Warnf("surface play: %v", err)
		}
	} else {
		e.surface.Pause()
	}
	return nil
}

// invalidateLoadsLocked supersedes the in-flight source load, if any: its
// context is cancelled and its generation goes stale, so even a surface
// that finishes the load before noticing the abort has its result dropped
// on arrival.
func (e *Engine) invalidateLoadsLocked() {
	e.loadGen++
	if e.loadCancel != nil {
		e.loadCancel()
		e.loadCancel = nil
	}
}

// startLoadLocked launches a source load for seg off the scheduling loop
// under a fresh per-load context. Callers hold e.mu and have already
// invalidated the previous load.
func (e *Engine) startLoadLocked(seg timeline.Segment) {
	ctx, cancel := context.WithCancel(e.ctx)
	e.loadCancel = cancel
	gen, surface := e.loadGen, e.surface
	go func() {
		defer cancel()
		e.loadAndSync(ctx, gen, surface, seg)
	}()
}

// loadAndSync loads a new source off the scheduling loop and, if its
// generation is still current on completion, seeks and resumes the surface.
// A Seek, Play-restart, Load or Destroy issued meanwhile cancels ctx and
// bumps the generation, so a stale load can never win over the position
// the user moved to.
func (e *Engine) loadAndSync(ctx context.Context, gen uint64, surface media.Surface, seg timeline.Segment) {
	err := surface.Load(ctx, seg.Source)

	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	if gen != e.loadGen {
		// Superseded. A surface that ignored the abort has already swapped
		// its content though, so record what it now holds and, when that no
		// longer matches the active segment, put the right source back.
		var syncErr error
		if err == nil {
			e.loadedSource = seg.Source
			if e.activeIndex >= 0 {
				if active := e.segments[e.activeIndex]; active.Source == seg.Source {
					syncErr = e.syncSurfaceLocked(active)
				} else {
					e.invalidateLoadsLocked()
					e.startLoadLocked(active)
				}
			}
		}
		e.mu.Unlock()
		e.report(syncErr)
		return
	}
	if err != nil {
		// Pause rather than silently continuing desynchronized.
		e.playing = false
		surface.Pause()
		e.mu.Unlock()
		e.report(&LoadError{ClipID: seg.ClipID, Source: seg.Source, Err: err})
		return
	}
	e.loadedSource = seg.Source
	syncErr := e.syncSurfaceLocked(seg)
	e.mu.Unlock()

	e.report(syncErr)
}

// correctDriftLocked runs while the same segment stays active. The surface
// plays natively between boundary crossings; it is only reseeked when its
// reported time drifts beyond the tolerance, since reseeking every tick
// causes stutter. It also detects a source that ended before the segment's
// trim window and skips ahead instead of stalling.
func (e *Engine) correctDriftLocked(seg timeline.Segment) error {
	if e.loadedSource != seg.Source {
		// Transition load still in flight; the clock keeps running.
		return nil
	}

	expected := e.sourceSecondsLocked(seg)
	if dur := e.surface.Duration(); dur > 0 && expected > dur+e.driftTol {
		if e.shortSource {
			return nil
		}
		// Malformed short source: treat as hitting the out point early and
		// move on to the next segment.
		e.shortSource = true
		e.currentFrame = float64(seg.End)
		return &SeekError{
			ClipID:  seg.ClipID,
			Source:  seg.Source,
			Seconds: expected,
			Err:     fmt.Errorf("source ended at %.3fs before trim window", dur),
		}
	}

	if actual := e.surface.CurrentTime(); math.Abs(actual-expected) > e.driftTol {
		e.logger.Debugf("correcting drift on clip %q: surface at %.3fs, expected %.3fs", seg.ClipID, actual, expected)
		if err := e.surface.Seek(expected); err != nil {
			return &SeekError{ClipID: seg.ClipID, Source: seg.Source, Seconds: expected, Err: err}
		}
	}
	return nil
}

// report logs a media error and fans it out to the error callbacks. Must
// not be called with e.mu held.
func (e *Engine) report(err error) {
	if err == nil {
		return
	}
	e.logger.Warnf("%v", err)

	e.mu.Lock()
	fns := append([]ErrorFunc(nil), e.errorFns...)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}
