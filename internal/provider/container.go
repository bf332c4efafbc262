package provider

import (
	"github.com/giftledger/internal/authz"
	"github.com/giftledger/internal/cache"
	"github.com/giftledger/internal/calculator"
	"github.com/giftledger/internal/config"
	"github.com/giftledger/internal/logger"
	"github.com/giftledger/internal/models"
	"github.com/giftledger/internal/queue"
	"github.com/giftledger/internal/repository"
	"github.com/giftledger/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Registry    *calculator.Registry

	// Repositories
	AdminRepo    repository.AdminRepository
	UserRepo     repository.UserRepository
	VariantRepo  repository.VariantRepository
	OrderRepo    repository.OrderRepository
	GiftCardRepo repository.GiftCardRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	UserAuthService *service.UserAuthService
	EmailService    *service.EmailService
	CaptchaService  *service.CaptchaService
	VariantService  *service.VariantService
	GiftCardService *service.GiftCardService
	OrderService    *service.OrderService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Registry:    calculator.NewRegistry(),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.VariantRepo = repository.NewVariantRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.GiftCardRepo = repository.NewGiftCardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.VariantService = service.NewVariantService(c.VariantRepo)
	c.GiftCardService = service.NewGiftCardService(c.GiftCardRepo, c.OrderRepo, c.UserRepo, c.VariantRepo, c.Registry, c.QueueClient, &c.Config.GiftCard)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.VariantRepo, c.GiftCardService, c.QueueClient)
}

// Close 释放容器资源
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	cache.Close()
}
