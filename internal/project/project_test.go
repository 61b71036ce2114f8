package project_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtimeline/internal/project"
)

func writeProject(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeProject(t, `{
		"name": "demo",
		"fps": 30,
		"clips": [
			{"id": "a", "source": "s1", "startFrame": 0, "durationFrames": 150},
			{"source": "s1", "startFrame": 150, "durationFrames": 150, "sourceIn": 300, "sourceOut": 450}
		],
		"sources": [
			{"locator": "s1", "durationSeconds": 120}
		]
	}`)

	proj, err := project.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", proj.Name)
	assert.Equal(t, 30.0, proj.FPS)
	require.Len(t, proj.Clips, 2)
	assert.Equal(t, "a", proj.Clips[0].ID)
	assert.NotEmpty(t, proj.Clips[1].ID, "clips without an id get a generated one")
	assert.Equal(t, int64(300), proj.Clips[1].SourceIn)
	assert.Equal(t, 120.0, proj.Sources["s1"])
}

func TestLoadDefaults(t *testing.T) {
	path := writeProject(t, `{"clips": [{"source": "s1", "durationFrames": 10}]}`)
	proj, err := project.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30.0, proj.FPS, "frame rate defaults to 30")
	assert.Empty(t, proj.Sources)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := project.Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := project.Load(writeProject(t, `{"clips": [`))
		assert.Error(t, err)
	})

	t.Run("clip without source", func(t *testing.T) {
		_, err := project.Load(writeProject(t, `{"clips": [{"durationFrames": 10}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing source locator")
	})

	t.Run("negative fps", func(t *testing.T) {
		_, err := project.Load(writeProject(t, `{"fps": -24}`))
		assert.Error(t, err)
	})

	t.Run("source without locator", func(t *testing.T) {
		_, err := project.Load(writeProject(t, `{"sources": [{"durationSeconds": 5}]}`))
		assert.Error(t, err)
	})

	t.Run("non-positive source duration", func(t *testing.T) {
		_, err := project.Load(writeProject(t, `{"sources": [{"locator": "s1", "durationSeconds": 0}]}`))
		assert.Error(t, err)
	})
}
