package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"skillmarket_backend/database"
	"skillmarket_backend/internal/cache"
	"skillmarket_backend/internal/config"
	"skillmarket_backend/internal/email"
	"skillmarket_backend/internal/handlers"
	"skillmarket_backend/internal/logger"
	"skillmarket_backend/internal/middleware"
	"skillmarket_backend/internal/models"
	"skillmarket_backend/internal/repositories"
	"skillmarket_backend/internal/routes"
	"skillmarket_backend/internal/services"
	"skillmarket_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	invalidator := initializeInvalidator(cfg)
	emailProvider := initializeEmailProvider(cfg)

	serviceContainer := initializeServices(cfg, gormDB, invalidator, emailProvider)
	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter()
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

func initializeInvalidator(cfg *config.Config) cache.Invalidator {
	if !cfg.Redis.Enabled {
		logger.Warn("Redis disabled, cache invalidation is a no-op")
		return cache.NewNoopInvalidator()
	}

	redisInvalidator := cache.NewRedisInvalidator(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
	if err := redisInvalidator.Connect(context.Background()); err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	logger.Info("Redis connected", "addr", cfg.Redis.Addr)
	return redisInvalidator
}

func initializeEmailProvider(cfg *config.Config) email.Provider {
	if !cfg.Email.Enabled {
		logger.Warn("Email disabled, using mock provider")
		return email.NewMockProvider()
	}

	provider, err := email.NewSMTPProvider(email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})
	if err != nil {
		logger.Fatal("Failed to initialize SMTP provider", "error", err)
	}
	logger.Info("SMTP email provider initialized", "host", cfg.Email.SMTPHost)
	return provider
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, invalidator cache.Invalidator, emailProvider email.Provider) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository()
	profileRepo := repositories.NewProfileRepository()
	serviceRepo := repositories.NewServiceRepository()
	reviewRepo := repositories.NewReviewRepository()

	authService := services.NewAuthService(gormDB, userRepo)
	profileService := services.NewProfileService(gormDB, profileRepo, serviceRepo, invalidator)
	reviewService := services.NewReviewService(gormDB, gormDB, reviewRepo, profileRepo, serviceRepo, userRepo, invalidator, emailProvider)

	return &services.ServiceContainer{
		AuthService:    authService,
		ProfileService: profileService,
		ReviewService:  reviewService,
	}
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:    handlers.NewAuthHandler(baseHandler, container.AuthService),
		ProfileHandler: handlers.NewProfileHandler(baseHandler, container.ProfileService),
		ReviewHandler:  handlers.NewReviewHandler(baseHandler, container.ReviewService),
	}
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}

func seedFirstAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("FIRST_ADMIN_EMAIL")
	adminPassword := os.Getenv("FIRST_ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		Name:         "Administrator",
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return nil
}
