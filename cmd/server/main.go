package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/filmtrack/internal/config"
	"github.com/bitfantasy/filmtrack/internal/middleware"
	"github.com/bitfantasy/filmtrack/internal/track/handler"
	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/bitfantasy/filmtrack/internal/track/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 本地开发用.env，生产环境走真实环境变量
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting filmtrack service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, zapLogger, cfg)
	handlers := handler.NewHandlers(services, repos)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	// TranslateError让唯一约束冲突映射为gorm.ErrDuplicatedKey，批量导入靠它分类失败原因
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// SSE事件流不压缩，其余列表接口走gzip
		v1.GET("/events", h.SSE.Stream)

		compressed := v1.Group("")
		compressed.Use(gzip.Gzip(gzip.DefaultCompression))
		{
			// 客户管理
			accounts := compressed.Group("/accounts")
			{
				accounts.GET("", h.Account.List)
				accounts.POST("", h.Account.Create)
				accounts.GET("/:id", h.Account.Get)
				accounts.PUT("/:id", h.Account.Update)
				accounts.DELETE("/:id", h.Account.Delete)
			}

			// 产品管理
			products := compressed.Group("/products")
			{
				products.GET("", h.Product.List)
				products.POST("", h.Product.Create)
				products.GET("/:id", h.Product.Get)
				products.PUT("/:id", h.Product.Update)
				products.DELETE("/:id", h.Product.Delete)
			}

			// 铜版管理
			plates := compressed.Group("/plates")
			{
				plates.GET("", h.Plate.List)
				plates.POST("", h.Plate.Create)
				plates.GET("/:id", h.Plate.Get)
				plates.PUT("/:id", h.Plate.Update)
				plates.DELETE("/:id", h.Plate.Delete)
			}

			// 工单管理
			workOrders := compressed.Group("/work-orders")
			{
				workOrders.GET("", h.WorkOrder.List)
				workOrders.POST("", h.WorkOrder.Create)
				workOrders.GET("/:id", h.WorkOrder.Get)
				workOrders.PUT("/:id", h.WorkOrder.Update)
				workOrders.DELETE("/:id", h.WorkOrder.Delete)
				workOrders.GET("/:id/status-options", h.WorkOrder.StatusOptions)
				workOrders.PUT("/:id/status", h.WorkOrder.UpdateStatus)
				workOrders.POST("/:id/complete", h.WorkOrder.Complete)
				workOrders.POST("/:id/deliver", h.WorkOrder.Deliver)
				workOrders.PUT("/:id/plate-status", h.WorkOrder.UpdatePlateStatus)
				workOrders.POST("/:id/plate-ready", h.WorkOrder.MarkPlateReady)
			}

			// 批量导入
			bulk := compressed.Group("/bulk")
			{
				bulk.POST("/accounts", h.Bulk.CreateAccounts)
				bulk.POST("/products", h.Bulk.CreateProducts)
				bulk.POST("/work-orders", h.Bulk.CreateWorkOrders)
				bulk.POST("/failures/export", h.Bulk.ExportFailures)
			}

			// 勾选集
			selection := compressed.Group("/selection")
			{
				selection.GET("", h.Selection.State)
				selection.POST("/toggle", h.Selection.Toggle)
				selection.POST("/select-all", h.Selection.SelectAll)
				selection.DELETE("", h.Selection.Clear)
				selection.POST("/complete", h.Selection.CompleteBatch)
			}
		}
	}
}
