package service

import (
	"time"

	"tutorcrm/internal/model"
)

// LessonPatch is a sparse lesson update. A nil field is left untouched.
type LessonPatch struct {
	Description  *string
	StudentName  *string
	ParentName   *string
	StudentPhone *string
	ParentPhone  *string
	CourseName   *string
	StartTime    *time.Time
	Duration     *int
}

// IsEmpty reports whether the patch changes nothing.
func (p LessonPatch) IsEmpty() bool {
	return p.Description == nil && p.StudentName == nil && p.ParentName == nil &&
		p.StudentPhone == nil && p.ParentPhone == nil && p.CourseName == nil &&
		p.StartTime == nil && p.Duration == nil
}

// Apply copies the present fields onto l.
func (p LessonPatch) Apply(l *model.Lesson) {
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.StudentName != nil {
		l.StudentName = *p.StudentName
	}
	if p.ParentName != nil {
		l.ParentName = *p.ParentName
	}
	if p.StudentPhone != nil {
		l.StudentPhone = *p.StudentPhone
	}
	if p.ParentPhone != nil {
		l.ParentPhone = *p.ParentPhone
	}
	if p.CourseName != nil {
		l.CourseName = *p.CourseName
	}
	if p.StartTime != nil {
		l.StartTime = model.NaiveTime(*p.StartTime)
	}
	if p.Duration != nil {
		l.Duration = *p.Duration
	}
}
