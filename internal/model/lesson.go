package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// TimeLayout is how lesson timestamps appear on the wire: no zone, second precision.
const TimeLayout = "2006-01-02T15:04:05"

// DefaultLessonDuration is the lesson length in minutes when none is given.
const DefaultLessonDuration = 60

// Lesson is one concrete calendar entry owned by a user.
//
// StartTime is a naive wall-clock timestamp. It is always held in UTC so
// the wall clock survives every driver round trip unchanged.
type Lesson struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	StudentName  string    `json:"student_name" gorm:"size:255;not null"`
	ParentName   string    `json:"parent_name" gorm:"size:255;not null;default:''"`
	StudentPhone string    `json:"student_phone" gorm:"size:50;not null;default:''"`
	ParentPhone  string    `json:"parent_phone" gorm:"size:50;not null;default:''"`
	CourseName   string    `json:"course_name" gorm:"size:255;not null"`
	LessonNumber int       `json:"lesson_number" gorm:"not null"`
	StartTime    time.Time `json:"start_time" gorm:"not null;index"`
	Duration     int       `json:"duration" gorm:"not null"`
	Description  string    `json:"description" gorm:"type:text;not null"`
}

// BeforeSave pins StartTime to UTC before it reaches the driver.
func (l *Lesson) BeforeSave(tx *gorm.DB) error {
	l.StartTime = NaiveTime(l.StartTime)
	return nil
}

// AfterFind restores the UTC wall clock some drivers hand back in time.Local.
func (l *Lesson) AfterFind(tx *gorm.DB) error {
	l.StartTime = l.StartTime.UTC()
	return nil
}

// NaiveTime drops the location of t, keeping its wall clock, and truncates to the second.
func NaiveTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// MarshalJSON renders StartTime without a zone suffix.
func (l Lesson) MarshalJSON() ([]byte, error) {
	type lessonJSON Lesson
	return json.Marshal(struct {
		lessonJSON
		StartTime string `json:"start_time"`
	}{
		lessonJSON: lessonJSON(l),
		StartTime:  l.StartTime.Format(TimeLayout),
	})
}
