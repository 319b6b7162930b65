package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMostRecentSunday(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "midweek",
			in:   time.Date(2025, 6, 11, 14, 30, 0, 0, time.UTC), // Wednesday
			want: time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday maps to itself",
			in:   time.Date(2025, 6, 8, 23, 59, 0, 0, time.UTC),
			want: time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday maps back six days",
			in:   time.Date(2025, 6, 14, 1, 0, 0, 0, time.UTC),
			want: time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MostRecentSunday(tt.in)
			assert.True(t, got.Equal(tt.want), "got %s", got)
			assert.Equal(t, time.Sunday, got.Weekday())
		})
	}
}

func TestWeekKeyIsTimezoneStable(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// A local wall-clock time and a parsed plain date in the same calendar
	// week must produce the same key.
	local := WeekKey(time.Date(2025, 6, 11, 22, 15, 0, 0, loc))
	parsed := WeekKey(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC))

	assert.True(t, local.Equal(parsed), "local %s vs parsed %s", local, parsed)
	assert.Equal(t, time.UTC, local.Location())
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), local)
}

func TestStartOfDayKeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	in := time.Date(2025, 6, 11, 22, 15, 0, 0, loc)
	got := StartOfDay(in)

	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, in.Day(), got.Day())
}

func TestParseArticleDate(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2025-06-08T10:30:00Z", true},
		{"2025-06-08T10:30:00+02:00", true},
		{"Sun, 08 Jun 2025 10:30:00 GMT", true},
		{"Sun, 08 Jun 2025 10:30:00 -0700", true},
		{"2025-06-08 10:30:00", true},
		{"2025-06-08", true},
		{"June 8th", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := ParseArticleDate(tt.in)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
