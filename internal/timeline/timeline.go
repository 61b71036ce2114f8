package timeline

import (
	"fmt"
	"sort"
)

// Clip is an authoring-time unit placed on the timeline by the editing layer.
// The timeline is frame-indexed rather than time-indexed to avoid
// floating-point drift when clips are trimmed and concatenated.
type Clip struct {
	// ID is an opaque unique identifier for the clip.
	ID string
	// Source is an opaque locator for the playable media resource
	// (blob handle, remote URL). It is never parsed here.
	Source string
	// StartFrame is the clip's position on the overall timeline.
	StartFrame int64
	// DurationFrames is the clip's length on the timeline.
	DurationFrames int64
	// SourceIn and SourceOut describe an optional trim window within the
	// source, in source frames. A SourceOut of zero means the clip is
	// untrimmed and plays the source from the beginning.
	SourceIn  int64
	SourceOut int64
}

// Trimmed reports whether the clip carries a trim window.
func (c Clip) Trimmed() bool {
	return c.SourceOut > 0
}

// Segment is the engine-internal playback unit derived 1:1 from a Clip.
// Start and End are timeline-space frame bounds, End exclusive. Segments are
// rebuilt whenever the clip list changes and are immutable in between.
type Segment struct {
	ClipID    string
	Start     int64
	End       int64
	Source    string
	SourceIn  int64
	SourceOut int64
}

// Frames returns the segment's length in timeline frames.
func (s Segment) Frames() int64 {
	return s.End - s.Start
}

// Contains reports whether the (possibly fractional) frame falls within the
// segment's half-open bounds.
func (s Segment) Contains(frame float64) bool {
	return frame >= float64(s.Start) && frame < float64(s.End)
}

// Build derives the sorted segment list from a set of clips. Clips are
// validated, ordered by StartFrame, and bounded by their trim windows: a
// trimmed clip never occupies more timeline frames than its trim window has
// source frames, which is what enforces trim points at playback time.
//
// Overlapping clips are a collaborator bug (the editing layer owns the
// non-overlap invariant) and are rejected rather than resolved.
func Build(clips []Clip) ([]Segment, error) {
	segments := make([]Segment, 0, len(clips))

	for _, clip := range clips {
		if clip.Source == "" {
			return nil, fmt.Errorf("clip %q: missing source locator", clip.ID)
		}
		if clip.DurationFrames <= 0 {
			return nil, fmt.Errorf("clip %q: duration must be positive, got %d", clip.ID, clip.DurationFrames)
		}
		if clip.StartFrame < 0 {
			return nil, fmt.Errorf("clip %q: start frame must not be negative, got %d", clip.ID, clip.StartFrame)
		}

		length := clip.DurationFrames
		sourceIn := clip.SourceIn
		if clip.Trimmed() {
			if clip.SourceIn < 0 || clip.SourceOut <= clip.SourceIn {
				return nil, fmt.Errorf("clip %q: invalid trim window [%d, %d)", clip.ID, clip.SourceIn, clip.SourceOut)
			}
			// The trim window caps the playable length. Enforcing the out
			// point here means playback needs no separate runtime monitor.
			if window := clip.SourceOut - clip.SourceIn; window < length {
				length = window
			}
		} else {
			sourceIn = 0
		}

		segments = append(segments, Segment{
			ClipID:    clip.ID,
			Start:     clip.StartFrame,
			End:       clip.StartFrame + length,
			Source:    clip.Source,
			SourceIn:  sourceIn,
			SourceOut: sourceIn + length,
		})
	}

	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	for i := 1; i < len(segments); i++ {
		prev, cur := segments[i-1], segments[i]
		if cur.Start < prev.End {
			return nil, fmt.Errorf("%w: clip %q (frames %d-%d) overlaps clip %q (frames %d-%d)",
				ErrOverlap, prev.ClipID, prev.Start, prev.End, cur.ClipID, cur.Start, cur.End)
		}
	}

	return segments, nil
}

// Locate finds the segment whose bounds contain the given frame via binary
// search over the sorted segment list. Because segment ends are exclusive, a
// frame sitting exactly on a boundary belongs to the following segment. The
// second return value is false when the frame falls in a gap or past the end.
func Locate(segments []Segment, frame float64) (int, bool) {
	if frame < 0 {
		return 0, false
	}
	i := sort.Search(len(segments), func(i int) bool {
		return float64(segments[i].End) > frame
	})
	if i < len(segments) && segments[i].Contains(frame) {
		return i, true
	}
	return 0, false
}

// TotalFrames returns the overall timeline length: the end of the last
// segment. Gaps between clips count toward the total.
func TotalFrames(segments []Segment) int64 {
	if len(segments) == 0 {
		return 0
	}
	return segments[len(segments)-1].End
}

// Timecode formats a frame position as HH:MM:SS:FF at the given frame rate.
func Timecode(frame int64, fps float64) string {
	if fps <= 0 || frame < 0 {
		return "00:00:00:00"
	}
	totalSeconds := int64(float64(frame) / fps)
	ff := frame - int64(float64(totalSeconds)*fps)
	hh := totalSeconds / 3600
	mm := (totalSeconds % 3600) / 60
	ss := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hh, mm, ss, ff)
}
