// internal/api/datetime_test.go
package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const istOffsetMinutes = 330

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "explicit IST offset",
			input: "2025-03-01T10:00:00+05:30",
			want:  time.Date(2025, 3, 1, 4, 30, 0, 0, time.UTC),
		},
		{
			name:  "explicit UTC",
			input: "2025-03-01T10:00:00Z",
			want:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "offset-less assumes IST",
			input: "2025-03-01T10:00:00",
			want:  time.Date(2025, 3, 1, 4, 30, 0, 0, time.UTC),
		},
		{
			name:  "offset-less without seconds",
			input: "2025-03-01T10:00",
			want:  time.Date(2025, 3, 1, 4, 30, 0, 0, time.UTC),
		},
		{
			name:  "fractional seconds with offset",
			input: "2025-03-01T10:00:00.500+05:30",
			want:  time.Date(2025, 3, 1, 4, 30, 0, 500000000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScheduleTime(tt.input, istOffsetMinutes)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

// The two documented forms of the same instant must store identically.
func TestParseScheduleTime_ISTEquivalence(t *testing.T) {
	withOffset, err := parseScheduleTime("2025-03-01T10:00:00+05:30", istOffsetMinutes)
	require.NoError(t, err)

	naive, err := parseScheduleTime("2025-03-01T10:00:00", istOffsetMinutes)
	require.NoError(t, err)

	assert.True(t, withOffset.Equal(naive))
}

func TestParseScheduleTime_ConfigurableOffset(t *testing.T) {
	got, err := parseScheduleTime("2025-03-01T10:00:00", 0)
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC).Equal(got))
}

func TestParseScheduleTime_Invalid(t *testing.T) {
	invalid := []string{"", "next tuesday", "2025-13-45T99:00:00", "01/03/2025"}

	for _, input := range invalid {
		_, err := parseScheduleTime(input, istOffsetMinutes)
		assert.Error(t, err, "input %q", input)
	}
}
