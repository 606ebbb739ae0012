package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"learnora.com/app/internal/modules/courses"
	"learnora.com/app/internal/modules/entitlements"
	"learnora.com/app/internal/modules/users"
	"learnora.com/app/pkg/view"
)

type UsersHandler struct {
	Users   *users.Repo
	Owned   *entitlements.Service
	Courses *courses.GormRepo
}

func NewUsersHandler(u *users.Repo, owned *entitlements.Service, c *courses.GormRepo) *UsersHandler {
	return &UsersHandler{Users: u, Owned: owned, Courses: c}
}

type createUserInput struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"required,email,max=255"`
}

// POST /api/users
func (h *UsersHandler) Create(c *gin.Context) {
	var in createUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBind(c, err, &in)
		return
	}

	u, err := h.Users.Create(c.Request.Context(), users.CreateInput{Name: in.Name, Email: in.Email})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, userView(u))
}

// GET /api/users/:id
func (h *UsersHandler) Get(c *gin.Context) {
	u, err := h.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

// GET /api/users/:id/courses
func (h *UsersHandler) OwnedCourses(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("id")

	ok, err := h.Users.Exists(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		fail(c, users.ErrNotFound)
		return
	}

	ids, err := h.Owned.ListCourseIDs(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}
	items, err := h.Courses.GetMany(ctx, ids)
	if err != nil {
		fail(c, err)
		return
	}

	out := view.OwnedCourses{UserID: userID, Courses: make([]view.CourseSummary, 0, len(items))}
	for _, it := range items {
		out.Courses = append(out.Courses, courseSummary(it))
	}
	c.JSON(http.StatusOK, out)
}
