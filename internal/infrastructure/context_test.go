package infrastructure

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "trace-123")
	assert.Equal(t, "trace-123", GetTraceID(ctx))
}

func TestGetTraceID_Absent(t *testing.T) {
	assert.Equal(t, "", GetTraceID(context.Background()))
}

func TestGenerateTraceID(t *testing.T) {
	id := GenerateTraceID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, GenerateTraceID())
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	first := GetTraceID(ctx)
	require.NotEmpty(t, first)

	// existing IDs are preserved
	assert.Equal(t, first, GetTraceID(EnsureTraceID(ctx)))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{level: "debug", want: "DEBUG"},
		{level: "info", want: "INFO"},
		{level: "warn", want: "WARN"},
		{level: "error", want: "ERROR"},
		{level: "unknown", want: "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.level).String())
		})
	}
}
