package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/identity"
	"github.com/noah-isme/school-dashboard-api/internal/repository"
	"github.com/noah-isme/school-dashboard-api/internal/service"
	"github.com/noah-isme/school-dashboard-api/internal/validation"
	"github.com/noah-isme/school-dashboard-api/pkg/cache"
	"github.com/noah-isme/school-dashboard-api/pkg/config"
	"github.com/noah-isme/school-dashboard-api/pkg/database"
	"github.com/noah-isme/school-dashboard-api/pkg/formguard"
	"github.com/noah-isme/school-dashboard-api/pkg/jobs"
	"github.com/noah-isme/school-dashboard-api/pkg/logger"
)

// @title School Dashboard API
// @version 1.0.0
// @description Entity forms, lists and exports for the school management dashboard.
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, falling back to in-process cache and guard", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	app := wire(cfg, db, redisClient, metrics, logr)

	app.auditQueue.Start(ctx)
	defer app.auditQueue.Stop(5 * time.Second)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, app, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutdown started")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logr.Info("shutdown complete")
	return nil
}

// application holds the wired services the router serves.
type application struct {
	db         *sqlx.DB
	metrics    *service.MetricsService
	auditQueue *jobs.Queue
	guard      formguard.Guard

	auth     *service.AuthService
	forms    *service.FormService
	related  *service.RelatedDataService
	exports  *service.ExportService
	students *service.StudentService
	teachers *service.TeacherService
	parents  *service.ParentService
	classes  *service.ClassService
	subjects *service.SubjectService
	lessons  *service.LessonService
	exams    *service.ExamService
	assigns  *service.AssignmentService
	results  *service.ResultService
	events   *service.EventService
}

func wire(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, metrics *service.MetricsService, logr *zap.Logger) *application {
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	parentRepo := repository.NewParentRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	examRepo := repository.NewExamRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	eventRepo := repository.NewEventRepository(db)
	gradeRepo := repository.NewGradeRepository(db)

	var provider identity.Provider
	switch cfg.Identity.Provider {
	case config.IdentityProviderClerk:
		provider = identity.NewClerkProvider(identity.ClerkConfig{
			SecretKey: cfg.Identity.ClerkSecretKey,
			BaseURL:   cfg.Identity.ClerkAPIURL,
			Timeout:   cfg.Identity.Timeout,
		}, nil, logr.Named("identity"))
	default:
		provider = identity.NewLocalProvider(userRepo, logr.Named("identity"))
	}
	if metrics != nil {
		provider = identity.Observed(provider, metrics)
	}

	audit := service.NewAuditService(repository.NewAuditRepository(db), metrics, logr.Named("audit"))
	auditQueue := jobs.NewQueue("audit", audit.Handle, jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		MaxRetries: cfg.Audit.MaxRetries,
		RetryDelay: cfg.Audit.RetryDelay,
		Logger:     logr.Named("jobs"),
	})
	audit.AttachQueue(auditQueue)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Forms.RelatedCacheTTL, logr, cfg.Forms.RelatedCacheEnable)

	pageSize := cfg.Forms.ItemsPerPage
	app := &application{
		db:         db,
		metrics:    metrics,
		auditQueue: auditQueue,
		guard:      formguard.New(redisClient, cfg.Forms.GuardTTL),
		auth: service.NewAuthService(userRepo, validation.New(), audit, logr, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
		students: service.NewStudentService(studentRepo, classRepo, provider, audit, logr, pageSize),
		teachers: service.NewTeacherService(teacherRepo, provider, audit, logr, pageSize),
		parents:  service.NewParentService(parentRepo, provider, audit, logr, pageSize),
		classes:  service.NewClassService(classRepo, logr, pageSize),
		subjects: service.NewSubjectService(subjectRepo, logr, pageSize),
		lessons:  service.NewLessonService(lessonRepo, logr, pageSize),
		exams:    service.NewExamService(examRepo, lessonRepo, logr, pageSize),
		assigns:  service.NewAssignmentService(assignmentRepo, logr, pageSize),
		results:  service.NewResultService(resultRepo, logr, pageSize),
		events:   service.NewEventService(eventRepo, logr, pageSize),
		exports:  service.NewExportService(studentRepo, classRepo, logr),
	}

	app.related = service.NewRelatedDataService(service.OptionSources{
		Teachers:    teacherRepo,
		Students:    studentRepo,
		Parents:     parentRepo,
		Grades:      gradeRepo,
		Classes:     classRepo,
		Subjects:    subjectRepo,
		Lessons:     lessonRepo,
		Exams:       examRepo,
		Assignments: assignmentRepo,
	}, cacheSvc, metrics, cfg.Forms.RelatedCacheTTL, logr.Named("related"))

	app.forms = service.NewFormService(validation.New(), service.FormOrchestrators{
		Students:    app.students,
		Teachers:    app.teachers,
		Parents:     app.parents,
		Classes:     app.classes,
		Subjects:    app.subjects,
		Lessons:     app.lessons,
		Exams:       app.exams,
		Assignments: app.assigns,
		Results:     app.results,
		Events:      app.events,
	}, app.related, audit, metrics, logr.Named("forms"))

	return app
}
