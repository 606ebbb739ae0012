package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"learnora.com/app/internal/shared/dbutil"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

type CreateInput struct {
	Name  string
	Email string
	Role  string
}

func (r *Repo) Create(ctx context.Context, in CreateInput) (User, error) {
	role := in.Role
	if role == "" {
		role = RoleStudent
	}
	now := time.Now()
	u := User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
		if dbutil.IsDuplicate(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

func (r *Repo) Get(ctx context.Context, id string) (User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if dbutil.IsNotFound(err) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// Exists is a cheap presence check used before charging or granting.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
