package view

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type OwnedCourses struct {
	UserID  string          `json:"user_id"`
	Courses []CourseSummary `json:"courses"`
}
