package service

import (
	"fmt"
	"time"

	"tutorcrm/internal/errors"
	"tutorcrm/internal/model"
)

// WeeksPerSeries is how many consecutive weeks a bulk request covers.
const WeeksPerSeries = 52

// TimeSlot is one weekly occurrence: DayOfWeek counts days from the start date (0=Monday when
// the start date is a Monday).
type TimeSlot struct {
	DayOfWeek int
	Hour      int
	Minute    int
}

// BulkLessonRequest describes a weekly lesson series.
type BulkLessonRequest struct {
	StudentName       string
	ParentName        string
	StudentPhone      string
	ParentPhone       string
	CourseName        string
	FirstLessonNumber int
	Duration          int
	// StartDate anchors week 0. It is used as given, whatever weekday it falls on.
	StartDate string
	Slots     []TimeSlot
}

// GenerateLessons expands req into WeeksPerSeries*len(req.Slots) lessons owned by userID.
//
// Lessons are emitted week by week and, inside a week, in slot order; numbering follows
// emission order starting at FirstLessonNumber. It has no side effects.
func GenerateLessons(req BulkLessonRequest, userID uint) ([]model.Lesson, error) {
	base, err := ParseNaiveTime(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date %q is not a calendar date", errors.ErrMalformedInput, req.StartDate)
	}
	for i, slot := range req.Slots {
		if slot.Hour < 0 || slot.Hour > 23 || slot.Minute < 0 || slot.Minute > 59 {
			return nil, fmt.Errorf("%w: slot %d has no valid time %d:%02d", errors.ErrMalformedInput, i, slot.Hour, slot.Minute)
		}
	}

	lessons := make([]model.Lesson, 0, WeeksPerSeries*len(req.Slots))
	number := req.FirstLessonNumber
	for week := 0; week < WeeksPerSeries; week++ {
		for _, slot := range req.Slots {
			day := base.AddDate(0, 0, slot.DayOfWeek+week*7)
			start := time.Date(day.Year(), day.Month(), day.Day(), slot.Hour, slot.Minute, 0, 0, time.UTC)

			lessons = append(lessons, model.Lesson{
				UserID:       userID,
				StudentName:  req.StudentName,
				ParentName:   req.ParentName,
				StudentPhone: req.StudentPhone,
				ParentPhone:  req.ParentPhone,
				CourseName:   req.CourseName,
				LessonNumber: number,
				StartTime:    start,
				Duration:     req.Duration,
				Description:  "",
			})
			number++
		}
	}
	return lessons, nil
}
