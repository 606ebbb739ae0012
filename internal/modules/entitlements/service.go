package entitlements

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnora.com/app/internal/modules/users"
)

var ErrUserNotFound = users.ErrNotFound

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, logger: slog.Default()}
}

func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Grant adds courseID to the user's owned set. Calling it again for the same
// pair is a no-op.
func (s *Service) Grant(ctx context.Context, userID, courseID, paymentID string) error {
	return s.GrantTx(ctx, s.db, userID, courseID, paymentID)
}

// GrantTx runs the set-add on tx so it commits or rolls back together with the
// caller's payment transition.
func (s *Service) GrantTx(ctx context.Context, tx *gorm.DB, userID, courseID, paymentID string) error {
	if userID == "" || courseID == "" {
		return errors.New("grant: user and course are required")
	}

	var n int64
	if err := tx.WithContext(ctx).Model(&users.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}

	uc := UserCourse{
		ID:        uuid.NewString(),
		UserID:    userID,
		CourseID:  courseID,
		PaymentID: paymentID,
		CreatedAt: time.Now(),
	}
	// insert-or-ignore on the unique key; never read-modify-write
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&uc)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.logger.InfoContext(ctx, "course granted", "user_id", userID, "course_id", courseID, "payment_id", paymentID)
	}
	return nil
}

func (s *Service) Owns(ctx context.Context, userID, courseID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&UserCourse{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&n).Error
	return n > 0, err
}

// ListCourseIDs returns the owned set, oldest grant first.
func (s *Service) ListCourseIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&UserCourse{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("course_id", &ids).Error
	return ids, err
}
