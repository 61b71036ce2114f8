package timeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtimeline/internal/timeline"
)

func TestBuild(t *testing.T) {
	t.Run("sorts by start frame", func(t *testing.T) {
		segments, err := timeline.Build([]timeline.Clip{
			{ID: "b", Source: "s1", StartFrame: 150, DurationFrames: 150},
			{ID: "a", Source: "s1", StartFrame: 0, DurationFrames: 150},
		})
		require.NoError(t, err)
		require.Len(t, segments, 2)
		assert.Equal(t, "a", segments[0].ClipID)
		assert.Equal(t, "b", segments[1].ClipID)
	})

	t.Run("trim window maps into source space", func(t *testing.T) {
		segments, err := timeline.Build([]timeline.Clip{
			{ID: "a", Source: "s1", StartFrame: 0, DurationFrames: 90, SourceIn: 90, SourceOut: 180},
		})
		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, int64(0), segments[0].Start)
		assert.Equal(t, int64(90), segments[0].End)
		assert.Equal(t, int64(90), segments[0].SourceIn)
		assert.Equal(t, int64(180), segments[0].SourceOut)
	})

	t.Run("trim window bounds segment length", func(t *testing.T) {
		// Duration claims 200 frames but the trim window only has 90.
		segments, err := timeline.Build([]timeline.Clip{
			{ID: "a", Source: "s1", StartFrame: 0, DurationFrames: 200, SourceIn: 90, SourceOut: 180},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(90), segments[0].End)
		assert.Equal(t, int64(180), segments[0].SourceOut)
	})

	t.Run("untrimmed clip plays from source start", func(t *testing.T) {
		segments, err := timeline.Build([]timeline.Clip{
			{ID: "a", Source: "s1", StartFrame: 10, DurationFrames: 50},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), segments[0].SourceIn)
		assert.Equal(t, int64(50), segments[0].SourceOut)
	})

	t.Run("rejects overlap", func(t *testing.T) {
		_, err := timeline.Build([]timeline.Clip{
			{ID: "a", Source: "s1", StartFrame: 0, DurationFrames: 150},
			{ID: "b", Source: "s2", StartFrame: 100, DurationFrames: 150},
		})
		require.ErrorIs(t, err, timeline.ErrOverlap)
		assert.Contains(t, err.Error(), `"a"`)
		assert.Contains(t, err.Error(), `"b"`)
	})

	t.Run("adjacent clips do not overlap", func(t *testing.T) {
		_, err := timeline.Build([]timeline.Clip{
			{ID: "a", Source: "s1", StartFrame: 0, DurationFrames: 150},
			{ID: "b", Source: "s2", StartFrame: 150, DurationFrames: 150},
		})
		assert.NoError(t, err)
	})

	t.Run("rejects invalid clips", func(t *testing.T) {
		cases := map[string]timeline.Clip{
			"zero duration":     {ID: "a", Source: "s1", DurationFrames: 0},
			"negative duration": {ID: "a", Source: "s1", DurationFrames: -5},
			"negative start":    {ID: "a", Source: "s1", StartFrame: -1, DurationFrames: 10},
			"missing source":    {ID: "a", DurationFrames: 10},
			"inverted trim":     {ID: "a", Source: "s1", DurationFrames: 10, SourceIn: 50, SourceOut: 40},
		}
		for name, clip := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := timeline.Build([]timeline.Clip{clip})
				assert.Error(t, err)
			})
		}
	})

	t.Run("empty clip list", func(t *testing.T) {
		segments, err := timeline.Build(nil)
		require.NoError(t, err)
		assert.Empty(t, segments)
		assert.Equal(t, int64(0), timeline.TotalFrames(segments))
	})
}

func TestLocate(t *testing.T) {
	segments, err := timeline.Build([]timeline.Clip{
		{ID: "a", Source: "s1", StartFrame: 0, DurationFrames: 150},
		{ID: "b", Source: "s1", StartFrame: 150, DurationFrames: 150},
		{ID: "c", Source: "s2", StartFrame: 400, DurationFrames: 100},
	})
	require.NoError(t, err)

	t.Run("boundary frame belongs to the later segment", func(t *testing.T) {
		idx, ok := timeline.Locate(segments, 149)
		require.True(t, ok)
		assert.Equal(t, "a", segments[idx].ClipID)

		idx, ok = timeline.Locate(segments, 150)
		require.True(t, ok)
		assert.Equal(t, "b", segments[idx].ClipID)
	})

	t.Run("fractional frames", func(t *testing.T) {
		idx, ok := timeline.Locate(segments, 149.9)
		require.True(t, ok)
		assert.Equal(t, "a", segments[idx].ClipID)
	})

	t.Run("gap is uncovered", func(t *testing.T) {
		_, ok := timeline.Locate(segments, 350)
		assert.False(t, ok)
	})

	t.Run("past the end", func(t *testing.T) {
		_, ok := timeline.Locate(segments, 500)
		assert.False(t, ok)

		_, ok = timeline.Locate(segments, 10000)
		assert.False(t, ok)
	})

	t.Run("negative frame", func(t *testing.T) {
		_, ok := timeline.Locate(segments, -1)
		assert.False(t, ok)
	})

	t.Run("gap counts toward total", func(t *testing.T) {
		assert.Equal(t, int64(500), timeline.TotalFrames(segments))
	})
}

func TestTimecode(t *testing.T) {
	assert.Equal(t, "00:00:00:00", timeline.Timecode(0, 30))
	assert.Equal(t, "00:00:01:00", timeline.Timecode(30, 30))
	assert.Equal(t, "00:00:04:29", timeline.Timecode(149, 30))
	assert.Equal(t, "00:01:00:00", timeline.Timecode(1800, 30))
	assert.Equal(t, "01:00:00:15", timeline.Timecode(108015, 30))
	assert.Equal(t, "00:00:00:00", timeline.Timecode(100, 0))
}
