package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/publora/publora-backend/internal/config"
	"github.com/publora/publora-backend/internal/handler"
	"github.com/publora/publora-backend/internal/middleware"
	"github.com/publora/publora-backend/internal/migration"
	"github.com/publora/publora-backend/internal/repository"
	"github.com/publora/publora-backend/internal/routes"
	"github.com/publora/publora-backend/internal/service"
	pkgcache "github.com/publora/publora-backend/pkg/cache"
	pkges "github.com/publora/publora-backend/pkg/elasticsearch"
	"github.com/publora/publora-backend/pkg/jwt"
	pkglogger "github.com/publora/publora-backend/pkg/logger"
	pkgredis "github.com/publora/publora-backend/pkg/redis"
	pkgstorage "github.com/publora/publora-backend/pkg/storage"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Publora Backend API
// @version         1.0
// @description     Content operations platform - post approval workflows, revisions and publishing
//
// @license.name    MIT
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.GetLogger().Info().
		Str("env", env).
		Strs("env_files", dotenvFiles).
		Msg("starting publora-backend")

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config from %s: %v", configPath, err)
	}

	// MySQL
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("redis unavailable, continuing without cache")
		redisClient = nil
	}

	var cacheService pkgcache.Service
	if redisClient != nil {
		cacheService = pkgcache.NewService(redisClient)
	}

	// Elasticsearch (optional, revision search)
	var esClient *pkges.Client
	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) > 0 {
		esClient, err = pkges.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("elasticsearch unavailable, continuing without search indexing")
			esClient = nil
		}
	}

	// S3-compatible storage (optional, media uploads)
	var s3Client *pkgstorage.S3Client
	if cfg.Storage.Enabled && cfg.Storage.Bucket != "" {
		s3Client, err = pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("s3 storage unavailable, continuing without media uploads")
			s3Client = nil
		}
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	// Repositories
	postRepo := repository.NewPostRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	historyRepo := repository.NewApprovalHistoryRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	notificationSvc := service.NewNotificationService(notificationRepo)
	workflowSvc := service.NewWorkflowService(workflowRepo, cacheService)
	revisionSvc := service.NewRevisionService(revisionRepo, esClient)
	ruleSvc := service.NewRuleService(ruleRepo, postRepo)
	postSvc := service.NewPostService(postRepo, revisionSvc, ruleSvc)
	approvalSvc := service.NewApprovalService(assignmentRepo, historyRepo, workflowSvc, notificationSvc, cacheService)
	dashboardSvc := service.NewDashboardService(workflowRepo, assignmentRepo, postRepo, cacheService)
	mediaSvc := service.NewMediaService(s3Client)

	// Handlers
	postHandler := handler.NewPostHandler(postSvc)
	approvalHandler := handler.NewApprovalHandler(approvalSvc, dashboardSvc)
	workflowHandler := handler.NewWorkflowHandler(workflowSvc)
	revisionHandler := handler.NewRevisionHandler(revisionSvc, postSvc)
	ruleHandler := handler.NewRuleHandler(ruleSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	mediaHandler := handler.NewMediaHandler(mediaSvc)

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS
	allowOrigins := os.Getenv("CORS_ALLOW_ORIGINS")
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}))

	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "publora-backend",
			"time":    time.Now().Unix(),
		})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(
		router,
		postHandler,
		approvalHandler,
		workflowHandler,
		revisionHandler,
		ruleHandler,
		notificationHandler,
		mediaHandler,
		jwtManager,
	)

	port := cfg.App.Port
	if port == 0 {
		port = 8080
	}
	addr := fmt.Sprintf(":%d", port)
	pkglogger.GetLogger().Info().Str("addr", addr).Msg("listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// initDB opens the MySQL connection with error translation enabled so
// duplicate-key races surface as gorm.ErrDuplicatedKey
func initDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
