// Package project loads editor project files: the clip list handed to the
// engine plus a source registry describing the media behind the locators.
package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"vtimeline/internal/timeline"
)

// Project holds the fully processed project file contents.
type Project struct {
	Name  string
	FPS   float64
	Clips []timeline.Clip
	// Sources maps locators to their natural duration in seconds, used to
	// back the simulated playback surface.
	Sources map[string]float64
}

// rawClip maps directly onto the JSON clip entries.
type rawClip struct {
	ID             string `json:"id"`
	Source         string `json:"source"`
	StartFrame     int64  `json:"startFrame"`
	DurationFrames int64  `json:"durationFrames"`
	SourceIn       int64  `json:"sourceIn"`
	SourceOut      int64  `json:"sourceOut"`
}

type rawSource struct {
	Locator         string  `json:"locator"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// rawProject is the intermediate structure matching the JSON file.
type rawProject struct {
	Name    string      `json:"name"`
	FPS     float64     `json:"fps"`
	Clips   []rawClip   `json:"clips"`
	Sources []rawSource `json:"sources"`
}

// Load reads and parses a project file from the given path. Clips without
// an explicit id get a generated one, so hand-written project files can
// omit them.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file at %s: %w", path, err)
	}

	var raw rawProject
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project JSON: %w", err)
	}

	fps := raw.FPS
	if fps == 0 {
		fps = 30
	}
	if fps < 0 {
		return nil, fmt.Errorf("invalid frame rate %g", fps)
	}

	clips := make([]timeline.Clip, 0, len(raw.Clips))
	for i, rc := range raw.Clips {
		if rc.Source == "" {
			return nil, fmt.Errorf("clip %d (%q): missing source locator", i, rc.ID)
		}
		id := rc.ID
		if id == "" {
			id = uuid.NewString()
		}
		clips = append(clips, timeline.Clip{
			ID:             id,
			Source:         rc.Source,
			StartFrame:     rc.StartFrame,
			DurationFrames: rc.DurationFrames,
			SourceIn:       rc.SourceIn,
			SourceOut:      rc.SourceOut,
		})
	}

	sources := make(map[string]float64, len(raw.Sources))
	for _, rs := range raw.Sources {
		if rs.Locator == "" {
			return nil, fmt.Errorf("source entry with empty locator")
		}
		if rs.DurationSeconds <= 0 {
			return nil, fmt.Errorf("source %q: duration must be positive, got %g", rs.Locator, rs.DurationSeconds)
		}
		sources[rs.Locator] = rs.DurationSeconds
	}

	return &Project{
		Name:    raw.Name,
		FPS:     fps,
		Clips:   clips,
		Sources: sources,
	}, nil
}
