package jsonutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	t.Parallel()

	type rec struct {
		Type       string `json:"type"`
		Confidence int    `json:"confidence"`
	}
	in := rec{Type: "IP_ADDRESS", Confidence: 90}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out rec
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestMarshalIndent(t *testing.T) {
	t.Parallel()

	data, err := MarshalIndent(map[string]int{"a": 1}, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"a\": 1")
}

func TestStreamEncoder_IndentAndNewline(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	enc := NewStreamEncoder(&buf)
	enc.SetIndent("", "  ")
	require.NoError(t, enc.Encode(map[string]string{"target": "example.com"}))

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "\n"), "Encode must append a newline")
	assert.Contains(t, out, "  \"target\"")
}

func TestStreamDecoder(t *testing.T) {
	t.Parallel()

	var v struct {
		ID string `json:"id"`
	}
	dec := NewStreamDecoder(strings.NewReader(`{"id":"scan-1"}`))
	require.NoError(t, dec.Decode(&v))
	assert.Equal(t, "scan-1", v.ID)
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Valid([]byte(`{"ok":true}`)))
	assert.False(t, Valid([]byte(`{"ok":`)))
}
