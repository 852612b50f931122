package service

import (
	"github.com/bitfantasy/filmtrack/internal/config"
	"github.com/bitfantasy/filmtrack/internal/shared/notify"
	"github.com/bitfantasy/filmtrack/internal/track/repository"
	"github.com/bitfantasy/filmtrack/internal/track/sse"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Account   *AccountService
	Product   *ProductService
	Plate     *PlateService
	WorkOrder *WorkOrderService
	Bulk      *BulkService
	Selection *SelectionService
	Cache     *ListCache
	Hub       *sse.Hub
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, logger *zap.Logger, cfg *config.Config) *Services {
	hub := sse.NewHub()
	cache := NewListCache(rdb, cfg.Cache.ListTTL)

	// 初始化MinIO客户端，失败时降级为不归档
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("minio init failed, failure reports will not be archived", zap.Error(err))
			minioClient = nil
		}
	}

	var notifier *notify.Client
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewClient(cfg.Notify.WebhookURL)
	}

	woService := NewWorkOrderService(repos.WorkOrder, repos.Product, repos.Account, cache, hub, cfg.Deadline.ImminentDays)

	return &Services{
		Account:   NewAccountService(repos.Account, cache),
		Product:   NewProductService(repos.Product, repos.Account, repos.Plate, repos.WorkOrder, cache),
		Plate:     NewPlateService(repos.Plate, repos.Product, cache),
		WorkOrder: woService,
		Bulk:      NewBulkService(logger, hub, cache, notifier, minioClient, cfg.MinIO.Bucket),
		Selection: NewSelectionService(woService, hub),
		Cache:     cache,
		Hub:       hub,
	}
}
