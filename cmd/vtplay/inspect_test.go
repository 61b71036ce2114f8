package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtimeline/internal/timeline"
)

func TestSegmentRows(t *testing.T) {
	segments, err := timeline.Build([]timeline.Clip{
		{ID: "a", Source: "s1", StartFrame: 0, DurationFrames: 150},
		{ID: "b", Source: "s2", StartFrame: 200, DurationFrames: 100, SourceIn: 300, SourceOut: 400},
	})
	require.NoError(t, err)

	rows := segmentRows(segments, 25)
	require.Len(t, rows, 3, "a gap row sits between the two clips")

	assert.Equal(t, "a", rows[0][0])
	assert.Equal(t, "0-150", rows[0][1])

	assert.Equal(t, "(gap)", rows[1][0])
	assert.Equal(t, "150-200", rows[1][1])
	assert.Equal(t, "50", rows[1][2])

	assert.Equal(t, "b", rows[2][0])
	assert.Equal(t, "200-300", rows[2][1])
	assert.Equal(t, "s2", rows[2][3])
}

func TestSegmentRowsNoGaps(t *testing.T) {
	segments, err := timeline.Build([]timeline.Clip{
		{ID: "a", Source: "s1", StartFrame: 0, DurationFrames: 100},
		{ID: "b", Source: "s1", StartFrame: 100, DurationFrames: 100},
	})
	require.NoError(t, err)
	assert.Len(t, segmentRows(segments, 25), 2)
}
