package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	testCases := []struct {
		input    string
		expected logrus.Level
	}{
		{input: "debug", expected: logrus.DebugLevel},
		{input: "warn", expected: logrus.WarnLevel},
		{input: "bogus", expected: logrus.InfoLevel},
		{input: "", expected: logrus.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, New(tc.input, &bytes.Buffer{}).GetLevel())
		})
	}
}

func TestNew_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New("info", buf)

	log.WithField("service", "Tracker").Info("Cycle finished")
	log.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Cycle finished", entry["msg"])
	assert.Equal(t, "Tracker", entry["service"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_DefaultsToStderr(t *testing.T) {
	// stdout занят JSON-результатом режима --once
	assert.Equal(t, os.Stderr, New("info", nil).Out)
}
