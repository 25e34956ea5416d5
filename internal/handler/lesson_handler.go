package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"tutorcrm/internal/errors"
	"tutorcrm/internal/model"
	"tutorcrm/internal/service"
)

// LessonHandler handles lesson endpoints. Every route requires an authenticated user.
type LessonHandler struct {
	lessonService service.LessonService
}

// NewLessonHandler creates a new lesson handler.
func NewLessonHandler(lessonService service.LessonService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService}
}

// TimeSlotRequest is one weekly slot. day_of_week is an offset in days from start_date.
type TimeSlotRequest struct {
	DayOfWeek *int `json:"day_of_week" validate:"required"`
	Hour      *int `json:"hour" validate:"required"`
	Minute    int  `json:"minute"`
}

// BulkLessonsRequest represents a weekly series to create.
type BulkLessonsRequest struct {
	StudentName       string            `json:"student_name" validate:"required"`
	ParentName        string            `json:"parent_name"`
	StudentPhone      string            `json:"student_phone"`
	ParentPhone       string            `json:"parent_phone"`
	CourseName        string            `json:"course_name" validate:"required"`
	FirstLessonNumber *int              `json:"first_lesson_number"`
	Duration          *int              `json:"duration"`
	Slots             []TimeSlotRequest `json:"slots" validate:"required,dive"`
	StartDate         string            `json:"start_date" validate:"required" example:"2026-02-16"`
}

// UpdateLessonRequest is a sparse update: omitted or null fields are left as they are.
type UpdateLessonRequest struct {
	Description  *string `json:"description"`
	StudentName  *string `json:"student_name"`
	ParentName   *string `json:"parent_name"`
	StudentPhone *string `json:"student_phone"`
	ParentPhone  *string `json:"parent_phone"`
	CourseName   *string `json:"course_name"`
	StartTime    *string `json:"start_time" example:"2026-02-16T16:00:00"`
	Duration     *int    `json:"duration"`
}

func (r BulkLessonsRequest) toService() service.BulkLessonRequest {
	req := service.BulkLessonRequest{
		StudentName:       r.StudentName,
		ParentName:        r.ParentName,
		StudentPhone:      r.StudentPhone,
		ParentPhone:       r.ParentPhone,
		CourseName:        r.CourseName,
		FirstLessonNumber: 1,
		Duration:          model.DefaultLessonDuration,
		StartDate:         r.StartDate,
		Slots:             make([]service.TimeSlot, 0, len(r.Slots)),
	}
	if r.FirstLessonNumber != nil {
		req.FirstLessonNumber = *r.FirstLessonNumber
	}
	if r.Duration != nil {
		req.Duration = *r.Duration
	}
	for _, s := range r.Slots {
		req.Slots = append(req.Slots, service.TimeSlot{DayOfWeek: *s.DayOfWeek, Hour: *s.Hour, Minute: s.Minute})
	}
	return req
}

func (r UpdateLessonRequest) toPatch() (service.LessonPatch, error) {
	patch := service.LessonPatch{
		Description:  r.Description,
		StudentName:  r.StudentName,
		ParentName:   r.ParentName,
		StudentPhone: r.StudentPhone,
		ParentPhone:  r.ParentPhone,
		CourseName:   r.CourseName,
		Duration:     r.Duration,
	}
	if r.StartTime != nil {
		t, err := service.ParseNaiveTime(*r.StartTime)
		if err != nil {
			return service.LessonPatch{}, fmt.Errorf("%w: start_time %q", errors.ErrMalformedInput, *r.StartTime)
		}
		patch.StartTime = &t
	}
	return patch, nil
}

// BulkCreate godoc
// @Summary Create a year of weekly lessons
// @Description Expands every slot over 52 weeks from start_date and stores the whole batch atomically.
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkLessonsRequest true "Series definition"
// @Success 201 {array} model.Lesson
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /lessons/bulk [post]
func (h *LessonHandler) BulkCreate(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var req BulkLessonsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	lessons, err := h.lessonService.BulkCreate(c.Request().Context(), user.ID, req.toService())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, lessons)
}

// List godoc
// @Summary List lessons in a time range
// @Description Returns lessons with start <= start_time < end, earliest first.
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param start query string true "Range start (inclusive), ISO date or date-time"
// @Param end query string true "Range end (exclusive), ISO date or date-time"
// @Success 200 {array} model.Lesson
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /lessons [get]
func (h *LessonHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	start, err := queryTime(c, "start")
	if err != nil {
		return respondError(c, err)
	}
	end, err := queryTime(c, "end")
	if err != nil {
		return respondError(c, err)
	}

	lessons, err := h.lessonService.ListInRange(c.Request().Context(), user.ID, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, lessons)
}

// Get godoc
// @Summary Get a lesson
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} model.Lesson
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := lessonID(c)
	if err != nil {
		return err
	}

	lesson, err := h.lessonService.Get(c.Request().Context(), user.ID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, lesson)
}

// Update godoc
// @Summary Partially update a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param request body UpdateLessonRequest true "Fields to change"
// @Success 200 {object} model.Lesson
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /lessons/{id} [patch]
func (h *LessonHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := lessonID(c)
	if err != nil {
		return err
	}

	var req UpdateLessonRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	patch, err := req.toPatch()
	if err != nil {
		return respondError(c, err)
	}

	lesson, err := h.lessonService.Update(c.Request().Context(), user.ID, id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, lesson)
}

// Delete godoc
// @Summary Delete a lesson
// @Tags lessons
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := lessonID(c)
	if err != nil {
		return err
	}

	if err := h.lessonService.Delete(c.Request().Context(), user.ID, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func lessonID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, badRequest("invalid id")
	}
	return uint(id), nil
}

func queryTime(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: query parameter %q is required", errors.ErrMalformedInput, name)
	}
	t, err := service.ParseNaiveTime(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: query parameter %q is not an ISO date-time", errors.ErrMalformedInput, name)
	}
	return t, nil
}
