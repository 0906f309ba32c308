package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function to restore original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false // Disable colors for easier testing
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}

	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugLevelShowsAllMessages", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("DEBUG")
		defer SetLevel("INFO")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		assert.Contains(t, out, "debug message")
		assert.Contains(t, out, "info message")
		assert.Contains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("WarnLevelHidesDebugAndInfo", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("WARN")
		defer SetLevel("INFO")

		Debug("debug message")
		Info("info message")
		Warn("warn message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "warn message")
	})

	t.Run("InvalidLevelIgnored", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetLevel("LOUD")

		Info("still here")
		assert.Contains(t, buf.String(), "still here")
	})
}

func TestTextFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetFormat("text")
	Info("session opened", KeySessionID, "abc123", KeyClientIP, "10.0.0.7")

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "session opened")
	assert.Contains(t, out, "session_id=abc123")
	assert.Contains(t, out, "client_ip=10.0.0.7")
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetFormat("json")
	defer SetFormat("text")

	Info("packet received", KeyPacket, "ClientAuthenticate", KeyPacketID, uint64(42))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "packet received", record["msg"])
	assert.Equal(t, "ClientAuthenticate", record["packet"])
	assert.Equal(t, float64(42), record["packet_id"])
}

func TestContextFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	lc := NewLogContext("192.168.1.5").
		WithSession("sess-9").
		WithUsername("alice").
		WithPacket("ClientAddFriend")
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "dispatching request")

	out := buf.String()
	assert.Contains(t, out, "session_id=sess-9")
	assert.Contains(t, out, "username=alice")
	assert.Contains(t, out, "packet=ClientAddFriend")
	assert.Contains(t, out, "client_ip=192.168.1.5")
}

func TestContextFieldsMissingContext(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	InfoCtx(context.Background(), "bare message")
	assert.Contains(t, buf.String(), "bare message")
}

func TestWith(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	l := With(KeySessionID, "sess-1")
	l.Info("bound fields")

	out := buf.String()
	assert.Contains(t, out, "bound fields")
	assert.Contains(t, out, "session_id=sess-1")
}

func TestWithGroupQualifiesKeys(t *testing.T) {
	buf := new(bytes.Buffer)
	h := NewConsoleHandler(buf, nil, false)

	l := slog.New(h.WithGroup("store"))
	l.Info("opened", "backend", "sqlite")

	assert.Contains(t, buf.String(), "store.backend=sqlite")
}

func TestErrAttr(t *testing.T) {
	assert.True(t, Err(nil).Equal(slog.Attr{}))

	a := Err(assert.AnError)
	assert.Equal(t, KeyError, a.Key)
	assert.Contains(t, a.Value.String(), "assert.AnError")
}

func TestColorOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	h := NewConsoleHandler(buf, nil, true)

	l := slog.New(h)
	l.Error("boom")

	out := buf.String()
	assert.True(t, strings.Contains(out, colorRed), "expected color escape in output")
	assert.Contains(t, out, "ERROR")
}
