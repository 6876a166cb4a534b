package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-dashboard-api/api/swagger"
	"github.com/noah-isme/school-dashboard-api/internal/handler"
	"github.com/noah-isme/school-dashboard-api/internal/middleware"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/pkg/config"
	"github.com/noah-isme/school-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-dashboard-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, app *application, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics))

	ops := handler.NewMetricsHandler(app.metrics, app.db)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	if app.metrics != nil {
		r.GET("/metrics", ops.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := handler.NewAuthHandler(app.auth)
	api.POST("/auth/login", auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(app.auth))
	secured.GET("/auth/me", auth.Me)

	staff := secured.Group("")
	staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))

	staff.GET("/students", handler.List[models.StudentDetail](app.students))
	staff.GET("/teachers", handler.List[models.Teacher](app.teachers))
	staff.GET("/parents", handler.List[models.Parent](app.parents))
	staff.GET("/classes", handler.List[models.ClassDetail](app.classes))
	staff.GET("/subjects", handler.List[models.Subject](app.subjects))
	staff.GET("/lessons", handler.List[models.LessonDetail](app.lessons))
	staff.GET("/exams", handler.List[models.ExamDetail](app.exams))
	staff.GET("/assignments", handler.List[models.Assignment](app.assigns))
	staff.GET("/results", handler.List[models.ResultDetail](app.results))
	staff.GET("/events", handler.List[models.Event](app.events))

	exports := handler.NewExportHandler(app.exports)
	staff.GET("/classes/:id/roster", exports.Roster)

	// Per-entity role checks happen in the form service.
	forms := handler.NewFormHandler(app.forms, app.related)
	formRoutes := staff.Group("/forms")
	formRoutes.GET("/:entity/related", forms.Related)
	guarded := formRoutes.Group("")
	guarded.Use(middleware.FormGuard(app.guard, logr.Named("formguard")))
	guarded.POST("/:entity", forms.Create)
	guarded.PUT("/:entity/:id", forms.Update)
	guarded.PATCH("/parent/:id", forms.PatchParent)
	guarded.DELETE("/:entity/:id", forms.Delete)

	return r
}
