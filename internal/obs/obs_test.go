package obs

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZeroLogger_MinLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(&buf, Warn)
	lg.Logf(Info, "dropped %d", 1)
	require.Zero(t, buf.Len())

	lg.With("conn", "c1").Logf(Error, "kept %s", "x")
	line := strings.TrimSpace(buf.String())
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &m))
	require.Equal(t, "error", m["level"])
	require.Equal(t, "kept x", m["message"])
	require.Equal(t, "c1", m["conn"])
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": Debug, "INFO": Info, "": Info, "warning": Warn, "error": Error} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestMemMeter(t *testing.T) {
	var m MemMeter
	m.Counter("reqs", 1, Label{"status", "200"}, Label{"a", "b"})
	m.Counter("reqs", 2, Label{"a", "b"}, Label{"status", "200"})
	m.Counter("reqs", 1, Label{"status", "404"})
	m.Histogram("dur", 0.5)
	m.Histogram("dur", 0.7)

	require.Equal(t, 3.0, m.CounterValue("reqs", Label{"status", "200"}, Label{"a", "b"}))
	require.Equal(t, 1.0, m.CounterValue("reqs", Label{"status", "404"}))
	require.Zero(t, m.CounterValue("reqs"))
	require.Equal(t, 2, m.Observations("dur"))
}
