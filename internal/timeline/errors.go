package timeline

import "errors"

// ErrOverlap is returned by Build when two clips claim the same timeline
// frames. Non-overlap is a precondition owned by the editing layer, so the
// condition indicates a caller bug rather than a runtime state.
var ErrOverlap = errors.New("overlapping clips")
