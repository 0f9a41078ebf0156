package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	log := New(&buf, false)
	log.Debugf("hidden %d", 1)
	log.Infof("hello %s", "world")
	log.Warnf("careful")
	log.Errorf("broken")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "warning: careful")
	assert.Contains(t, out, "error: broken")
}

func TestLoggerDebugEnabled(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	log := New(&buf, true)
	log.Debugf("visible")
	assert.Contains(t, buf.String(), "debug: visible")
}

func TestNilLoggerIsSilent(t *testing.T) {
	var log *Logger
	// Must not panic.
	log.Debugf("x")
	log.Infof("x")
	log.Warnf("x")
	log.Errorf("x")
}

func TestIsCIEnvVar(t *testing.T) {
	t.Setenv("CI", "true")
	assert.True(t, IsCI())
}
