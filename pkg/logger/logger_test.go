package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug")

	l.Info("model trained",
		String("ticker", "AAPL"),
		Int("rows", 9),
		Float64("r2", 0.5),
		Duration("duration_ms", 1500*time.Millisecond),
		Date("date", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		Strings("skipped", []string{"X", "Y"}),
	)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "info", got["level"])
	assert.Equal(t, "model trained", got["message"])
	assert.Equal(t, "AAPL", got["ticker"])
	assert.EqualValues(t, 9, got["rows"])
	assert.EqualValues(t, 0.5, got["r2"])
	assert.EqualValues(t, 1500, got["duration_ms"])
	assert.Equal(t, "2024-01-02", got["date"])
	assert.Equal(t, "X, Y", got["skipped"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Info("hidden")
	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Error("shown", Error(errors.New("boom")))
	assert.Contains(t, buf.String(), "boom")
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info").With(String("component", "trainer"))

	l.Info("hello")
	assert.Contains(t, buf.String(), `"component":"trainer"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	require.Error(t, err)
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error("nothing")
}
