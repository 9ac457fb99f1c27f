package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSince(t *testing.T) {
	now := time.Date(2026, time.October, 16, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		wantDay string
		want    time.Time
	}{
		{name: "empty", input: "", want: time.Time{}},
		{name: "rfc3339", input: "2026-10-01T08:00:00Z", want: time.Date(2026, time.October, 1, 8, 0, 0, 0, time.UTC)},
		{name: "date", input: "2026-10-01", want: time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)},
		{name: "yesterday", input: "Yesterday", wantDay: "2026-10-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSince(tt.input, now)
			require.NoError(t, err)
			if tt.wantDay != "" {
				assert.Equal(t, tt.wantDay, DayKey(got))
				return
			}
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseSinceRejectsGibberish(t *testing.T) {
	_, err := ParseSince("purple monkey dishwasher", time.Now())
	assert.ErrorIs(t, err, ErrUnrecognizedTime)
}
