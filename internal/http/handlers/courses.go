package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"learnora.com/app/internal/http/middleware"
	"learnora.com/app/internal/modules/courses"
	"learnora.com/app/internal/shared/apperr"
	"learnora.com/app/pkg/view"
)

const (
	defaultPageSize = 24
	maxCourseForm   = 512 << 20
)

type CoursesHandler struct {
	Svc  *courses.Service
	Repo *courses.GormRepo
}

func NewCoursesHandler(svc *courses.Service, repo *courses.GormRepo) *CoursesHandler {
	return &CoursesHandler{Svc: svc, Repo: repo}
}

// createCourseForm keeps the multipart field names the course admin frontend sends.
type createCourseForm struct {
	Title         string `form:"title"`
	Description   string `form:"description"`
	ActualPrice   string `form:"actualPrice"`
	DiscountPrice string `form:"discountPrice"`
	Currency      string `form:"currency"`
	Duration      string `form:"duration"`
	Language      string `form:"language"`
	Category      string `form:"category"`
	ChaptersData  string `form:"chaptersData"`
}

// POST /api/courses (multipart)
func (h *CoursesHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCourseForm)

	var in createCourseForm
	if err := c.ShouldBind(&in); err != nil {
		failBind(c, err, &in)
		return
	}

	var chapters []courses.ChapterInput
	if s := strings.TrimSpace(in.ChaptersData); s != "" {
		if err := json.Unmarshal([]byte(s), &chapters); err != nil {
			middleware.Fail(c, apperr.InvalidErr("Invalid input.", map[string]string{"chaptersData": "Must be a JSON array of chapters."}))
			return
		}
	}

	var files courses.Files
	if form, err := c.MultipartForm(); err == nil {
		files = filesFromForm(form)
	}

	course, err := h.Svc.Create(c.Request.Context(), courses.CreateInput{
		Title:         in.Title,
		Description:   in.Description,
		ActualPrice:   in.ActualPrice,
		DiscountPrice: in.DiscountPrice,
		Currency:      in.Currency,
		Duration:      in.Duration,
		Language:      in.Language,
		Category:      in.Category,
		Chapters:      chapters,
		Files:         files,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, courseView(course))
}

func filesFromForm(form *multipart.Form) courses.Files {
	one := func(field string) *courses.Upload {
		fh := form.File[field]
		if len(fh) == 0 {
			return nil
		}
		u := upload(fh[0])
		return &u
	}
	many := func(field string) []courses.Upload {
		out := make([]courses.Upload, 0, len(form.File[field]))
		for _, fh := range form.File[field] {
			out = append(out, upload(fh))
		}
		return out
	}
	return courses.Files{
		IntroVideo:     one("introVideo"),
		IntroThumbnail: one("introThumbnail"),
		Videos:         many("videos"),
		Thumbnails:     many("thumbnails"),
		PDFs:           many("pdfUrl"),
	}
}

func upload(fh *multipart.FileHeader) courses.Upload {
	return courses.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// PUT /api/courses/:id (multipart or urlencoded); absent fields are left as stored
func (h *CoursesHandler) Update(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCourseForm)

	opt := func(key string) *string {
		if v, ok := c.GetPostForm(key); ok {
			return &v
		}
		return nil
	}

	in := courses.UpdateInput{
		Title:         opt("title"),
		Description:   opt("description"),
		ActualPrice:   opt("actualPrice"),
		DiscountPrice: opt("discountPrice"),
		Duration:      opt("duration"),
		Language:      opt("language"),
		Category:      opt("category"),
	}
	if s := opt("chaptersData"); s != nil && strings.TrimSpace(*s) != "" {
		if err := json.Unmarshal([]byte(*s), &in.Chapters); err != nil {
			middleware.Fail(c, apperr.InvalidErr("Invalid input.", map[string]string{"chaptersData": "Must be a JSON array of chapters."}))
			return
		}
	}
	if form, err := c.MultipartForm(); err == nil {
		in.Files = filesFromForm(form)
	}

	course, err := h.Svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, courseView(course))
}

// GET /api/courses?category=&page=&page_size=
func (h *CoursesHandler) List(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	size := parseInt(c.Query("page_size"), defaultPageSize)
	if size > 100 {
		size = defaultPageSize
	}

	items, total, err := h.Repo.List(c.Request.Context(), courses.ListParams{
		Category: strings.TrimSpace(c.Query("category")),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		fail(c, err)
		return
	}

	out := view.CourseList{
		Items:      make([]view.CourseSummary, 0, len(items)),
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: view.PagesFromTotal(total, size),
	}
	for _, it := range items {
		out.Items = append(out.Items, courseSummary(it))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/courses/:id
func (h *CoursesHandler) Get(c *gin.Context) {
	course, err := h.Repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, courseView(course))
}

// DELETE /api/courses/:id
func (h *CoursesHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
