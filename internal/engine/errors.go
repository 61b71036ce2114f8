package engine

import (
	"errors"
	"fmt"
)

// Usage errors indicate a collaborator bug and are returned loudly from the
// offending call instead of being surfaced through the error callback.
var (
	// ErrDestroyed is returned by every operation after Destroy.
	ErrDestroyed = errors.New("engine destroyed")
	// ErrNotLoaded is returned by Play and Seek before the first Load.
	ErrNotLoaded = errors.New("no timeline loaded")
	// ErrNonFiniteFrame is returned by Seek for NaN or infinite targets.
	ErrNonFiniteFrame = errors.New("seek frame must be finite")
)

// LoadError reports that a segment's source could not be opened. The engine
// pauses itself and surfaces it through the error callback; recovery is a
// caller decision, so there are no automatic retries.
type LoadError struct {
	ClipID string
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load source %q for clip %q: %v", e.Source, e.ClipID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SeekError reports that the surface rejected a seek, or that the source
// ended before the segment's trim window. The engine reports it and keeps
// the timeline clock running rather than stalling on a broken segment.
type SeekError struct {
	ClipID  string
	Source  string
	Seconds float64
	Err     error
}

func (e *SeekError) Error() string {
	return fmt.Sprintf("seek source %q for clip %q to %.3fs: %v", e.Source, e.ClipID, e.Seconds, e.Err)
}

func (e *SeekError) Unwrap() error { return e.Err }
