package courses

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"learnora.com/app/internal/shared/dbutil"
)

var (
	ErrNotFound  = errors.New("course not found")
	ErrSlugTaken = errors.New("course slug already exists")
)

type Repository interface {
	Get(ctx context.Context, id string) (Course, error)
	List(ctx context.Context, p ListParams) ([]Course, int64, error)
}

type GormRepo struct{ db *gorm.DB }

func NewGormRepo(db *gorm.DB) *GormRepo { return &GormRepo{db: db} }

type ListParams struct {
	Category string
	Page     int
	PageSize int
}

func (r *GormRepo) Get(ctx context.Context, id string) (Course, error) {
	var c Course
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if dbutil.IsNotFound(err) {
			return Course{}, ErrNotFound
		}
		return Course{}, err
	}
	return c, nil
}

func (r *GormRepo) GetMany(ctx context.Context, ids []string) ([]Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []Course
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("title ASC").Find(&items).Error
	return items, err
}

func (r *GormRepo) List(ctx context.Context, p ListParams) ([]Course, int64, error) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.PageSize
	if size < 1 || size > 100 {
		size = 24
	}

	q := r.db.WithContext(ctx).Model(&Course{})
	if p.Category != "" {
		q = q.Where("category = ?", p.Category)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Course
	err := q.Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error
	return items, total, err
}

func (r *GormRepo) Create(ctx context.Context, c *Course) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if dbutil.IsDuplicate(err) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

// Update loads the row, applies fn to it and writes every column back in one
// transaction.
func (r *GormRepo) Update(ctx context.Context, id string, fn func(*Course)) (Course, error) {
	var c Course
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			if dbutil.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		fn(&c)
		return tx.Model(&c).Select("*").Omit("id", "created_at").Updates(&c).Error
	})
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

// Delete removes the record and returns it so the caller can clean up media.
func (r *GormRepo) Delete(ctx context.Context, id string) (Course, error) {
	var c Course
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			if dbutil.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		return tx.Delete(&Course{}, "id = ?", id).Error
	})
	return c, err
}
