package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tutorcrm/internal/model"
)

// LessonRepository defines lesson persistence. Every lookup is scoped by owner.
type LessonRepository interface {
	CreateBatch(ctx context.Context, lessons []model.Lesson) error
	FindInRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Lesson, error)
	FindByIDForUser(ctx context.Context, userID, id uint) (*model.Lesson, error)
	Save(ctx context.Context, lesson *model.Lesson) error
	DeleteForUser(ctx context.Context, userID, id uint) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo LessonRepository) error) error
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

// CreateBatch inserts all lessons or none. Ids are written back into the slice.
func (r *lessonRepository) CreateBatch(ctx context.Context, lessons []model.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&lessons, 500).Error
	})
}

// FindInRange returns the user's lessons with start <= start_time < end, earliest first.
func (r *lessonRepository) FindInRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Lesson, error) {
	lessons := make([]model.Lesson, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, start.UTC(), end.UTC()).
		Order("start_time ASC").
		Order("id ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

// FindByIDForUser returns gorm.ErrRecordNotFound for missing and foreign lessons alike.
func (r *lessonRepository) FindByIDForUser(ctx context.Context, userID, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Save writes every column of an existing lesson.
func (r *lessonRepository) Save(ctx context.Context, lesson *model.Lesson) error {
	return r.db.WithContext(ctx).Save(lesson).Error
}

// DeleteForUser returns gorm.ErrRecordNotFound when nothing owned by userID matched.
func (r *lessonRepository) DeleteForUser(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Lesson{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// WithTransaction executes a function within a database transaction.
func (r *lessonRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo LessonRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &lessonRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
