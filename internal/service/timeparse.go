package service

import (
	"time"

	"tutorcrm/internal/model"
)

var naiveLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
}

// ParseNaiveTime reads an ISO date or date-time. A zone offset, if present, is dropped and the
// wall clock kept, so "2026-02-16T16:00:00+03:00" and "2026-02-16T16:00" mean the same instant here.
func ParseNaiveTime(s string) (time.Time, error) {
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return model.NaiveTime(t), nil
}
