package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNaiveTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-02-16", time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)},
		{"2026-02-16T16:00", time.Date(2026, 2, 16, 16, 0, 0, 0, time.UTC)},
		{"2026-02-16T16:00:30", time.Date(2026, 2, 16, 16, 0, 30, 0, time.UTC)},
		{"2026-02-16T16:00:30.250", time.Date(2026, 2, 16, 16, 0, 30, 250000000, time.UTC)},
		{"2026-02-16 16:00:30", time.Date(2026, 2, 16, 16, 0, 30, 0, time.UTC)},
		{"2026-02-16T00:00:00.000Z", time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)},
		{"2026-02-16T16:00:00+03:00", time.Date(2026, 2, 16, 16, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNaiveTime(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNaiveTime_Rejects(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "2026/02/16", "2026-13-01", "16:00"} {
		_, err := ParseNaiveTime(in)
		assert.Error(t, err, in)
	}
}
