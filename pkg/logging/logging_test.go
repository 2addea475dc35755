package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range testCases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	assert.Empty(t, buf.String())

	l.Warnf("frame %d failed", 3)
	l.Errorf("fatal %s", "x")
	out := buf.String()
	assert.Contains(t, out, "[WARN] frame 3 failed")
	assert.Contains(t, out, "[ERROR] fatal x")
}

func TestLogger_Logf(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	logf := l.Logf(LevelWarn)
	logf("dropped frame %d", 4)
	assert.Contains(t, buf.String(), "[WARN] dropped frame 4")

	buf.Reset()
	l.Logf(LevelDebug)("hidden")
	assert.Empty(t, buf.String())
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.NotPanics(t, func() { l.Errorf("nothing") })
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}
