package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"learnora.com/app/internal/http/handlers"
	"learnora.com/app/internal/http/handlers/admin"
	"learnora.com/app/internal/http/middleware"
	"learnora.com/app/internal/modules/courses"
	"learnora.com/app/internal/modules/entitlements"
	"learnora.com/app/internal/modules/payments"
	"learnora.com/app/internal/modules/users"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Logger *slog.Logger
	DB     *gorm.DB

	Users      *users.Repo
	Courses    *courses.GormRepo
	CourseSvc  *courses.Service
	Owned      *entitlements.Service
	Ledger     *payments.Ledger
	Reconciler *payments.Reconciler

	GatewayKeyID string
	AdminToken   string
	UploadDir    string
	UploadPrefix string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Logger, "/healthz"),
		middleware.ErrorHandler(d.Logger),
		middleware.Recovery(d.Logger),
	)
	r.MaxMultipartMemory = 32 << 20

	if d.UploadDir != "" && d.UploadPrefix != "" {
		r.Static(d.UploadPrefix, d.UploadDir)
	}

	health := &handlers.HealthHandler{DB: d.DB}
	r.GET("/healthz", health.Get)

	requireAdmin := middleware.RequireAdmin(d.AdminToken)

	pay := handlers.NewPaymentsHandler(d.Ledger, d.Reconciler, d.GatewayKeyID)
	hooks := handlers.NewWebhookHandler(d.Logger, d.Reconciler)
	crs := handlers.NewCoursesHandler(d.CourseSvc, d.Courses)
	usr := handlers.NewUsersHandler(d.Users, d.Owned, d.Courses)
	adminPay := admin.NewPaymentsHandler(d.Reconciler, d.Ledger)

	api := r.Group("/api")
	{
		api.POST("/payments/orders/:userId", pay.CreateOrder)
		api.GET("/payments/orders/:orderId", pay.Get)
		api.POST("/payments/verify", pay.Verify)
		api.POST("/payments/webhook", hooks.Handle)

		api.GET("/courses", crs.List)
		api.GET("/courses/:id", crs.Get)
		api.POST("/courses", requireAdmin, crs.Create)
		api.PUT("/courses/:id", requireAdmin, crs.Update)
		api.DELETE("/courses/:id", requireAdmin, crs.Delete)

		api.POST("/users", usr.Create)
		api.GET("/users/:id", usr.Get)
		api.GET("/users/:id/courses", usr.OwnedCourses)
	}

	adm := api.Group("/admin", requireAdmin)
	{
		adm.POST("/payments/:orderId/refund", adminPay.Refund)
		adm.GET("/users/:userId/payments", adminPay.ListByUser)
	}

	return r
}
