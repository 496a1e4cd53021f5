package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"pos-backend/internal/config"
	infraCache "pos-backend/internal/infrastructure/cache"
	"pos-backend/internal/infrastructure/database"
	"pos-backend/pkg/cache"
	"pos-backend/pkg/jwt"

	productRepo "pos-backend/internal/domains/product/repository"
	promoHandler "pos-backend/internal/domains/promotion/handler"
	promoRepo "pos-backend/internal/domains/promotion/repository"
	promoService "pos-backend/internal/domains/promotion/service"
	reportHandler "pos-backend/internal/domains/report/handler"
	reportRepo "pos-backend/internal/domains/report/repository"
	reportService "pos-backend/internal/domains/report/service"
	saleHandler "pos-backend/internal/domains/sale/handler"
	saleJob "pos-backend/internal/domains/sale/job"
	saleRepo "pos-backend/internal/domains/sale/repository"
	saleService "pos-backend/internal/domains/sale/service"
	userHandler "pos-backend/internal/domains/user/handler"
	userRepo "pos-backend/internal/domains/user/repository"
	userService "pos-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every long-lived dependency of the API and the worker.
// Fields are populated in dependency order by NewContainer.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	AsynqClient *asynq.Client
	JWTManager  *jwt.Manager

	// Repositories
	ProductRepo productRepo.Repository
	CatalogRepo promoRepo.CatalogLookup
	SaleRepo    saleRepo.Repository
	UserRepo    userRepo.Repository
	ReportRepo  reportRepo.Repository

	// Services
	PromotionService promoService.ServiceInterface
	SaleService      saleService.SaleService
	UserService      userService.Service
	ReportService    reportService.Service

	// Handlers
	PromotionHandler *promoHandler.PromotionHandler
	SaleHandler      *saleHandler.SaleHandler
	UserHandler      *userHandler.UserHandler
	ReportHandler    *reportHandler.ReportHandler

	// Jobs
	StockSyncHandler *saleJob.StockSyncHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the dependency graph:
// config, infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(dbConfig.DSN()); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("✅ Migrations applied")
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE AND QUEUE
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		// Sales still commit without Redis; only the in-flight guard and
		// the stock snapshots degrade.
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	}
	c.Cache = infraCache.NewRedisCache(c.Redis.Client)

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// ========================================
	// STEP 4-6: REPOSITORIES, SERVICES, HANDLERS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.ProductRepo = productRepo.NewPostgresRepository(pool)
	c.CatalogRepo = promoRepo.NewPostgresRepository(pool)
	c.SaleRepo = saleRepo.NewPostgresRepository(pool)
	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.ReportRepo = reportRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	calculator := promoService.NewDiscountCalculator(c.Config.Sale.CustomDiscountMinSubtotal)
	c.PromotionService = promoService.NewEvaluator(c.CatalogRepo, calculator)

	c.SaleService = saleService.NewSaleService(
		c.SaleRepo,
		c.ProductRepo,
		c.PromotionService,
		saleService.NewIdempotencyGuard(c.Cache, c.Config.Sale.IdempotencyTTL),
		c.AsynqClient,
		saleService.Config{TxTimeout: c.Config.Sale.TxTimeout},
	)

	c.UserService = userService.NewUserService(c.UserRepo, c.Cache, c.JWTManager)
	c.ReportService = reportService.NewReportService(c.ReportRepo, c.Cache, reportService.Config{
		CacheTTL:    c.Config.Report.CacheTTL,
		TopProducts: c.Config.Report.TopProducts,
	})
}

func (c *Container) initHandlers() {
	c.PromotionHandler = promoHandler.NewPromotionHandler(c.PromotionService)
	c.SaleHandler = saleHandler.NewSaleHandler(c.SaleService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.ReportHandler = reportHandler.NewReportHandler(c.ReportService)

	c.StockSyncHandler = saleJob.NewStockSyncHandler(c.ProductRepo, c.Cache, c.Config.Sale.LowStockThreshold)
}

// Cleanup releases connections on shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close Asynq client: %v", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("⚠️  Failed to close database: %v", err)
		} else {
			log.Println("✅ Database connections closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
