package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/edumanage/internal/app/controllers"
	appMigrations "github.com/yigit/edumanage/internal/app/migrations"
	appRepos "github.com/yigit/edumanage/internal/app/repositories"
	"github.com/yigit/edumanage/internal/app/repositories/memory"
	appRoutes "github.com/yigit/edumanage/internal/app/routes"
	appServices "github.com/yigit/edumanage/internal/app/services"
	"github.com/yigit/edumanage/internal/config"
	"github.com/yigit/edumanage/internal/db"
	appMiddleware "github.com/yigit/edumanage/internal/middleware"
	pkgAuth "github.com/yigit/edumanage/internal/pkg/auth"
	"github.com/yigit/edumanage/internal/pkg/helpers"
	"github.com/yigit/edumanage/internal/pkg/logger"
	"github.com/yigit/edumanage/internal/pkg/websocket"
	"github.com/yigit/edumanage/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	Hasher      *pkgAuth.PasswordHasher
	JWTService  *pkgAuth.JWTService
	Controllers appRoutes.Controllers
	Hub         *websocket.Hub

	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL and applies pending migrations when
// auto_migrate is on. The in-memory driver needs no database and returns nil.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	if cfg.UsesMemoryStore() {
		lgr.Warn().Msg("Using in-memory store; data is lost on restart")
		return nil, nil
	}

	lgr.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if !cfg.Database.AutoMigrate {
		return database, nil
	}

	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.Up(ctx); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	if version, err := migrator.Version(ctx); err == nil {
		lgr.Info().Int64("version", version).Msg("Database migrations successfully applied.")
	}

	return database, nil
}

// BuildDependencies initializes repositories, services and controllers.
// database is nil for the in-memory driver.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	var pinger appControllers.Pinger
	if database != nil {
		deps.Repos = appRepos.NewRepositories(database.Pool)
		pinger = database.Pool
	} else {
		deps.Repos = memory.NewRepositories()
	}

	hasher, err := pkgAuth.NewPasswordHasher(cfg.Security.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	deps.Hasher = hasher

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:  cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		Expiration: helpers.ParseDuration(cfg.JWT.Expiration, 24*time.Hour),
	})

	if err := seed.CreateDefaultData(ctx, deps.Repos.Users, hasher, seed.Instructor{
		Username: cfg.Seed.InstructorUsername,
		Password: cfg.Seed.InstructorPassword,
		FullName: cfg.Seed.InstructorFullName,
	}, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	authService := appServices.NewAuthService(deps.Repos.Users, hasher, deps.JWTService, logger.Component("auth"))
	userService := appServices.NewUserService(deps.Repos.Users, logger.Component("users"))
	courseService := appServices.NewCourseService(deps.Repos.Courses, logger.Component("courses"))
	// the hub stops when ctx is cancelled
	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	go deps.Hub.Run(ctx)

	enrollmentService := appServices.NewEnrollmentService(deps.Repos.Enrollments, deps.Hub, logger.Component("enrollments"))
	adminService := appServices.NewAdminService(deps.Repos, logger.Component("admin"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, logger.Component("auth"))

	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(authService, lgr),
		User:       appControllers.NewUserController(userService),
		Course:     appControllers.NewCourseController(courseService),
		Enrollment: appControllers.NewEnrollmentController(enrollmentService),
		Admin:      appControllers.NewAdminController(adminService, authService, lgr),
		Health:     appControllers.NewHealthController(pinger, strings.ToLower(cfg.Database.Driver)),
		Feed:       websocket.NewHandler(deps.Hub, logger.Component("websocket")),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(logger.Component("http")), appMiddleware.Recovery(lgr))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}
