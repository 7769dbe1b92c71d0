package weather

import (
	"fmt"
	"time"
)

// FormatClockTime renders epoch seconds as a 12-hour clock time in loc,
// e.g. "1:05 PM". A nil loc means UTC.
func FormatClockTime(epochSeconds int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t := time.Unix(epochSeconds, 0).In(loc)

	suffix := "AM"
	if t.Hour() >= 12 {
		suffix = "PM"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), suffix)
}

// FormatCalendarDate renders t as "Monday, Oct 17, 2026".
func FormatCalendarDate(t time.Time) string {
	return t.Format("Monday, Jan 2, 2006")
}

// FormatWeekday renders the abbreviated weekday used on forecast tiles.
func FormatWeekday(t time.Time) string {
	return t.Format("Mon")
}

// DaylightDuration is the whole hours and remaining minutes between
// sunrise and sunset.
type DaylightDuration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func (d DaylightDuration) String() string {
	return fmt.Sprintf("%dh %dmin", d.Hours, d.Minutes)
}

// ComputeDaylightDuration splits sunset-sunrise into hours and minutes.
// Inverted input yields the zero value, which callers treat as no data.
func ComputeDaylightDuration(sunriseEpoch, sunsetEpoch int64) DaylightDuration {
	if sunsetEpoch < sunriseEpoch {
		return DaylightDuration{}
	}
	secs := sunsetEpoch - sunriseEpoch
	return DaylightDuration{
		Hours:   int(secs / 3600),
		Minutes: int(secs % 3600 / 60),
	}
}
