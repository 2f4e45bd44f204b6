package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/linguaportal/staff-api/api/swagger"
	"github.com/linguaportal/staff-api/internal/handler"
	internalmiddleware "github.com/linguaportal/staff-api/internal/middleware"
	"github.com/linguaportal/staff-api/internal/models"
	"github.com/linguaportal/staff-api/internal/repository"
	"github.com/linguaportal/staff-api/internal/service"
	"github.com/linguaportal/staff-api/pkg/cache"
	"github.com/linguaportal/staff-api/pkg/config"
	"github.com/linguaportal/staff-api/pkg/database"
	"github.com/linguaportal/staff-api/pkg/events"
	"github.com/linguaportal/staff-api/pkg/export"
	"github.com/linguaportal/staff-api/pkg/logger"
	"github.com/linguaportal/staff-api/pkg/mailer"
	corsmiddleware "github.com/linguaportal/staff-api/pkg/middleware/cors"
	reqidmiddleware "github.com/linguaportal/staff-api/pkg/middleware/requestid"
	"github.com/linguaportal/staff-api/pkg/storage"
)

// @title LinguaPortal Staff API
// @version 0.1.0
// @description Staff records for the language school: teachers, managers, employee profiles
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, metric caching disabled", zap.Error(err))
		redisClient = nil
	}

	materialStore, err := storage.NewLocalStorage(cfg.Materials.Dir)
	if err != nil {
		logr.Fatal("failed to open materials directory", zap.Error(err))
	}
	materialSigner := storage.NewMaterialSigner(cfg.Materials.SigningSecret)

	teacherRepo := repository.NewTeacherRepository(db)
	userRepo := repository.NewUserRepository(db)
	languageRepo := repository.NewLanguageRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	profileRepo := repository.NewEmployeeProfileRepository(db)
	salaryRepo := repository.NewSalaryProfileRepository(db)
	managerRepo := repository.NewManagerRepository(db)
	materialRepo := repository.NewTeacherMaterialRepository(db)
	testRepo := repository.NewTestAssignmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	var metricsService *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsService = service.NewMetricsService()
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	var mail mailer.Mailer
	if cfg.Mail.Enabled {
		mail = mailer.NewLogMailer(logr)
	}

	bus := events.NewBus(logr)
	bus.Subscribe(events.TeacherBlocked, func(event events.Event) error {
		teacher, ok := event.Payload.(*models.Teacher)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", event.Payload)
		}
		logr.Info("teacher blocked notification",
			zap.String("teacher_id", teacher.ID),
			zap.String("user_id", teacher.UserID))
		return nil
	})

	teacherService := service.NewTeacherService(teacherRepo, userRepo, languageRepo, lessonRepo, salaryRepo, testRepo, mail, bus, nil, logr)
	teacherMetrics := service.NewTeacherMetricsService(lessonRepo, cacheService, logr)
	materialsService := service.NewMaterialsService(materialRepo, materialStore, materialSigner, cfg.BaseURL, logr)
	contractService := service.NewContractService(userRepo, languageRepo, export.NewPDFExporter(), logr)
	employeeService := service.NewEmployeeService(managerRepo, profileRepo, userRepo, nil, logr)

	teacherHandler := handler.NewTeacherHandler(teacherService, teacherMetrics, materialsService, contractService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	materialHandler := handler.NewMaterialHandler(materialsService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		teachers := api.Group("/teachers")
		{
			teachers.GET("", teacherHandler.List)
			teachers.POST("", teacherHandler.Onboard)
			teachers.GET("/:id", teacherHandler.Get)
			teachers.POST("/:id/block", teacherHandler.Block)
			teachers.GET("/:id/metrics", teacherHandler.Metrics)
			teachers.GET("/:id/salary-terms", teacherHandler.SalaryTerms)
			teachers.GET("/:id/basic-materials", teacherHandler.BasicMaterials)
			teachers.GET("/:id/materials", teacherHandler.Materials)
			teachers.GET("/:id/tests", teacherHandler.TestAssignments)
			teachers.GET("/:id/contract", teacherHandler.ContractSheet)
			teachers.GET("/:id/students/:student_id/language", teacherHandler.LanguageForStudent)
		}

		api.GET("/managers", employeeHandler.ListManagers)
		api.GET("/managers/:id", employeeHandler.GetManager)
		api.GET("/employees/:user_id/profile", employeeHandler.GetProfile)
		api.GET("/employees/:user_id/photo", employeeHandler.GetProfilePhoto)

		api.GET("/materials/ru/:code/:file", materialHandler.Download)
		api.GET("/teacher-materials/:id", materialHandler.Get)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
