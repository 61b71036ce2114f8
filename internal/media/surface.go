package media

import "context"

// Surface is the single playback surface the engine renders through,
// conceptually a video element. The engine owns the attached surface
// exclusively: no other component may seek it or toggle its play state
// while the engine is attached, and implementations must not call back
// into the engine.
//
// The surface's own playback position is a follower of the engine's
// timeline clock. It is read only for drift correction and end-of-media
// detection, never for transition decisions.
type Surface interface {
	// Load opens the media resource named by the opaque locator, replacing
	// whatever was loaded before. It may block; the engine calls it off the
	// scheduling loop and aborts it through ctx on seek, pause or destroy.
	Load(ctx context.Context, locator string) error

	// Seek moves the surface's playback position, in source-native seconds.
	Seek(seconds float64) error

	// Play resumes native playback of the loaded source.
	Play() error

	// Pause suspends native playback. Pausing an empty surface is a no-op.
	Pause()

	// CurrentTime reports the surface's playback position in seconds.
	CurrentTime() float64

	// Duration reports the loaded source's natural length in seconds, or 0
	// when unknown or nothing is loaded.
	Duration() float64
}
