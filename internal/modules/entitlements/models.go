package entitlements

import "time"

// UserCourse is one member of a user's owned-course set. The unique key on
// (user_id, course_id) is what makes the set a set.
type UserCourse struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:char(36);not null;uniqueIndex:ux_user_courses_user_course,priority:1"`
	CourseID  string    `gorm:"type:char(36);not null;uniqueIndex:ux_user_courses_user_course,priority:2;index:ix_user_courses_course_id"`
	PaymentID string    `gorm:"type:char(36);not null"`
	CreatedAt time.Time `gorm:"precision:3;not null"`
}

func (UserCourse) TableName() string { return "user_courses" }
