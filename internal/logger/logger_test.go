package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_Formats(t *testing.T) {
	var text bytes.Buffer
	NewWithWriter(&text, 0, "text").Info("Auth service: login", "user_id", "u1")
	assert.Contains(t, text.String(), `msg="Auth service: login"`)
	assert.Contains(t, text.String(), "user_id=u1")

	var js bytes.Buffer
	NewWithWriter(&js, 0, "JSON").With("component", "test").Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["component"])
}

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, 4, "text")

	l.Info("dropped")
	assert.Empty(t, buf.String())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}
