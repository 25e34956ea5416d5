package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tutorcrm/internal/errors"
	"tutorcrm/internal/model"
	"tutorcrm/internal/repository"
)

// LessonService handles lesson operations on behalf of one authenticated user.
// A lesson owned by someone else is reported exactly like a missing one.
type LessonService interface {
	BulkCreate(ctx context.Context, userID uint, req BulkLessonRequest) ([]model.Lesson, error)
	ListInRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Lesson, error)
	Get(ctx context.Context, userID, id uint) (*model.Lesson, error)
	Update(ctx context.Context, userID, id uint, patch LessonPatch) (*model.Lesson, error)
	Delete(ctx context.Context, userID, id uint) error
}

type lessonService struct {
	repo repository.LessonRepository
}

// NewLessonService creates a new lesson service.
func NewLessonService(repo repository.LessonRepository) LessonService {
	return &lessonService{repo: repo}
}

// BulkCreate generates a weekly series and stores it in one transaction.
func (s *lessonService) BulkCreate(ctx context.Context, userID uint, req BulkLessonRequest) ([]model.Lesson, error) {
	lessons, err := GenerateLessons(req, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateBatch(ctx, lessons); err != nil {
		return nil, fmt.Errorf("store lessons: %w", err)
	}
	return lessons, nil
}

// ListInRange returns lessons starting in [start, end).
func (s *lessonService) ListInRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Lesson, error) {
	lessons, err := s.repo.FindInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// Get returns one of the user's lessons.
func (s *lessonService) Get(ctx context.Context, userID, id uint) (*model.Lesson, error) {
	lesson, err := s.repo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, mapLessonErr(err)
	}
	return lesson, nil
}

// Update applies patch to one of the user's lessons.
func (s *lessonService) Update(ctx context.Context, userID, id uint, patch LessonPatch) (*model.Lesson, error) {
	var updated *model.Lesson
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.LessonRepository) error {
		lesson, err := txRepo.FindByIDForUser(ctx, userID, id)
		if err != nil {
			return err
		}
		if !patch.IsEmpty() {
			patch.Apply(lesson)
			if err := txRepo.Save(ctx, lesson); err != nil {
				return err
			}
		}
		updated = lesson
		return nil
	})
	if err != nil {
		return nil, mapLessonErr(err)
	}
	return updated, nil
}

// Delete removes one of the user's lessons.
func (s *lessonService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.repo.DeleteForUser(ctx, userID, id); err != nil {
		return mapLessonErr(err)
	}
	return nil
}

func mapLessonErr(err error) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrLessonNotFound
	}
	return fmt.Errorf("lesson storage: %w", err)
}
