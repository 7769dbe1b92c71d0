package weather

import "time"

const dayKeyLayout = "2006-01-02"

// AggregateOptions tunes AggregateDaily.
type AggregateOptions struct {
	// Location decides which calendar day a sample belongs to. Nil means UTC.
	Location *time.Location
	// ExcludeDay drops the bucket with this key (usually TodayKey).
	ExcludeDay string
	// Limit caps the number of returned days; 0 means no cap.
	Limit int
}

// TodayKey returns the day key of now in loc.
func TodayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(dayKeyLayout)
}

// AggregateDaily folds 3-hour forecast samples into one entry per local
// calendar day. Days keep the order in which they first appear. A day's
// icon and description come from its first sample; max and min fold over
// every sample of that day.
func AggregateDaily(entries []ForecastEntry, opts AggregateOptions) []DailyForecast {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	days := make([]DailyForecast, 0)
	index := make(map[string]int)

	for _, e := range entries {
		ts := e.Time(loc)
		key := ts.Format(dayKeyLayout)
		if key == opts.ExcludeDay {
			continue
		}

		if i, ok := index[key]; ok {
			d := &days[i]
			if e.TempMaxC > d.TempMaxC {
				d.TempMaxC = e.TempMaxC
			}
			if e.TempMinC < d.TempMinC {
				d.TempMinC = e.TempMinC
			}
			d.Samples++
			continue
		}

		index[key] = len(days)
		days = append(days, DailyForecast{
			Key:         key,
			Date:        time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc),
			Icon:        e.Condition.Icon,
			Description: e.Condition.Description,
			TempMaxC:    e.TempMaxC,
			TempMinC:    e.TempMinC,
			Samples:     1,
		})
	}

	if opts.Limit > 0 && len(days) > opts.Limit {
		days = days[:opts.Limit]
	}
	return days
}
