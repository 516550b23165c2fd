package logging

import (
	"bytes"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", FormatJSON, &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("vehicle", "hatchback").Msg("run started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run started", entry["message"])
	assert.Equal(t, "hatchback", entry["vehicle"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", FormatConsole, &buf)
	log.Debug().Int("gear", 2).Msg("shift")

	out := buf.String()
	assert.Contains(t, out, "shift")
	assert.Contains(t, out, "gear=2")
}

func TestNewWithGraylog(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	var buf bytes.Buffer
	log, closeFn, err := NewWithGraylog("info", FormatJSON, &buf, conn.LocalAddr().String())
	require.NoError(t, err)
	defer closeFn()

	log.Info().Str("vehicle", "kart_2t").Msg("engine started")
	assert.Contains(t, buf.String(), "engine started")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	packet := make([]byte, 8192)
	n, _, err := conn.ReadFrom(packet)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestNewWithGraylog_BadAddr(t *testing.T) {
	_, _, err := NewWithGraylog("info", FormatJSON, nil, "")
	assert.Error(t, err)
}
