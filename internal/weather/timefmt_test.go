package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatClockTime(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"afternoon", time.Date(2024, 6, 1, 13, 5, 0, 0, time.UTC), "1:05 PM"},
		{"after midnight", time.Date(2024, 6, 1, 0, 5, 0, 0, time.UTC), "12:05 AM"},
		{"noon", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), "12:00 PM"},
		{"morning", time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC), "9:30 AM"},
		{"late", time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC), "11:59 PM"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatClockTime(tc.at.Unix(), time.UTC))
		})
	}
}

func TestFormatClockTimeUsesViewerLocation(t *testing.T) {
	// 13:05 in UTC+2 is 11:05 UTC.
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	epoch := time.Date(2024, 6, 1, 11, 5, 0, 0, time.UTC).Unix()

	assert.Equal(t, "1:05 PM", FormatClockTime(epoch, plus2))
	assert.Equal(t, "11:05 AM", FormatClockTime(epoch, nil))
}

func TestFormatCalendarDate(t *testing.T) {
	d := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "Saturday, Oct 17, 2026", FormatCalendarDate(d))
	assert.Equal(t, "Sat", FormatWeekday(d))
}

func TestComputeDaylightDuration(t *testing.T) {
	sunrise := int64(1_700_000_000)

	for _, secs := range []int64{0, 59, 60, 3599, 3600, 47_100, 86_399} {
		d := ComputeDaylightDuration(sunrise, sunrise+secs)
		assert.GreaterOrEqual(t, d.Hours, 0)
		assert.GreaterOrEqual(t, d.Minutes, 0)
		assert.Less(t, d.Minutes, 60)

		total := int64(d.Hours*3600 + d.Minutes*60)
		assert.LessOrEqual(t, total, secs)
		assert.Less(t, secs-total, int64(60), "truncation must be under a minute")
	}

	d := ComputeDaylightDuration(sunrise, sunrise+13*3600+5*60+30)
	assert.Equal(t, DaylightDuration{Hours: 13, Minutes: 5}, d)
	assert.Equal(t, "13h 5min", d.String())
}

func TestComputeDaylightDurationInverted(t *testing.T) {
	assert.Equal(t, DaylightDuration{}, ComputeDaylightDuration(2000, 1000))
}
