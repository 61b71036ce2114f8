package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtimeline/internal/logger"
)

func TestLevelFiltering(t *testing.T) {
	cases := []struct {
		level string
		debug bool
		info  bool
		warn  bool
		error bool
	}{
		{"debug", true, true, true, true},
		{"info", false, true, true, true},
		{"WARN", false, false, true, true},
		{"error", false, false, false, true},
		{"verbose", false, true, true, true}, // unknown levels fall back to info
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, tc.level, "text")
			log.Debugf("debug %s", "line")
			log.Infof("info %s", "line")
			log.Warnf("warn %s", "line")
			log.Errorf("error %s", "line")

			out := buf.String()
			assert.Equal(t, tc.debug, strings.Contains(out, "debug line"))
			assert.Equal(t, tc.info, strings.Contains(out, "info line"))
			assert.Equal(t, tc.warn, strings.Contains(out, "warn line"))
			assert.Equal(t, tc.error, strings.Contains(out, "error line"))
		})
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info", "json")
	log.Infof("loaded %d segments", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "loaded 3 segments", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
}

func TestUnknownFormatFallsBackToText(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info", "fancy")
	log.Infof("hello")

	out := strings.TrimSpace(buf.String())
	assert.Contains(t, out, "msg=hello")
	assert.False(t, strings.HasPrefix(out, "{"))
}

func TestNopDiscards(t *testing.T) {
	log := logger.Nop()
	log.Debugf("x")
	log.Infof("x")
	log.Warnf("x")
	log.Errorf("x")
}
