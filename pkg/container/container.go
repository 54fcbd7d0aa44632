package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"rez-backend/internal/config"
	infraCache "rez-backend/internal/infrastructure/cache"
	"rez-backend/internal/infrastructure/database"
	"rez-backend/pkg/cache"
	"rez-backend/pkg/clock"
	"rez-backend/pkg/jwt"

	coinHandler "rez-backend/internal/domains/coin/handler"
	coinRepo "rez-backend/internal/domains/coin/repository"
	coinService "rez-backend/internal/domains/coin/service"
	consultationHandler "rez-backend/internal/domains/consultation/handler"
	consultationRepo "rez-backend/internal/domains/consultation/repository"
	consultationService "rez-backend/internal/domains/consultation/service"
	discountHandler "rez-backend/internal/domains/discount/handler"
	discountRepo "rez-backend/internal/domains/discount/repository"
	discountService "rez-backend/internal/domains/discount/service"
	menuHandler "rez-backend/internal/domains/menu/handler"
	menuRepo "rez-backend/internal/domains/menu/repository"
	menuService "rez-backend/internal/domains/menu/service"
	orderHandler "rez-backend/internal/domains/order/handler"
	orderModel "rez-backend/internal/domains/order/model"
	orderRepo "rez-backend/internal/domains/order/repository"
	orderService "rez-backend/internal/domains/order/service"
	outletHandler "rez-backend/internal/domains/outlet/handler"
	outletRepo "rez-backend/internal/domains/outlet/repository"
	outletService "rez-backend/internal/domains/outlet/service"
	productHandler "rez-backend/internal/domains/product/handler"
	productRepo "rez-backend/internal/domains/product/repository"
	productService "rez-backend/internal/domains/product/service"
	storeHandler "rez-backend/internal/domains/store/handler"
	storeRepo "rez-backend/internal/domains/store/repository"
	storeService "rez-backend/internal/domains/store/service"
)

// Container chứa TẤT CẢ dependencies của application.
// Struct này là "root" của dependency graph.
type Container struct {
	// Infrastructure - shared across all domains, singleton
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Clock      clock.Clock

	// Repositories
	StoreRepo         storeRepo.StoreRepository
	ProductRepo       productRepo.ProductRepository
	OrderRepo         orderRepo.OrderRepository
	OutletRepo        outletRepo.OutletRepository
	MenuRepo          menuRepo.MenuRepository
	ConsultationRepo  consultationRepo.ConsultationRepository
	CoinRepo          coinRepo.CoinRepository
	DiscountRepo      discountRepo.DiscountRepository
	DiscountUsageRepo discountRepo.UsageRepository

	// Services
	StoreService        storeService.ServiceInterface
	ProductService      productService.ServiceInterface
	OrderService        orderService.ServiceInterface
	OutletService       outletService.ServiceInterface
	MenuService         menuService.ServiceInterface
	ConsultationService consultationService.ServiceInterface
	CoinService         coinService.ServiceInterface
	DiscountService     discountService.ServiceInterface

	// Handlers
	StoreHandler         *storeHandler.StoreHandler
	ProductHandler       *productHandler.ProductHandler
	OrderHandler         *orderHandler.OrderHandler
	OutletHandler        *outletHandler.OutletHandler
	MenuHandler          *menuHandler.MenuHandler
	ConsultationHandler  *consultationHandler.ConsultationHandler
	CoinHandler          *coinHandler.CoinHandler
	DiscountHandler      *discountHandler.PublicHandler
	DiscountAdminHandler *discountHandler.AdminHandler
}

// NewContainer tạo và initialize toàn bộ dependency graph.
//
// QUAN TRỌNG: thứ tự initialization:
// 1. Config (không phụ thuộc gì)
// 2. Infrastructure (DB, Cache, JWT, Clock) - phụ thuộc Config
// 3. Repositories - phụ thuộc Infrastructure
// 4. Services - phụ thuộc Repositories (và nhau, qua function hooks)
// 5. Handlers - phụ thuộc Services
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// STEP 1: load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// STEP 2: database
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("✅ Database connected")

	// STEP 3: cache
	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			// Redis failure không critical - log warning và continue
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)
	c.Clock = clock.NewRealClock()

	// STEP 4-6: repositories, services, handlers
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.StoreRepo = storeRepo.NewPostgresRepository(pool)
	c.ProductRepo = productRepo.NewPostgresRepository(pool)
	c.OrderRepo = orderRepo.NewPostgresRepository(pool)
	c.OutletRepo = outletRepo.NewPostgresRepository(pool)
	c.MenuRepo = menuRepo.NewPostgresMenuRepository(pool)
	c.ConsultationRepo = consultationRepo.NewPostgresConsultationRepository(pool)
	c.CoinRepo = coinRepo.NewPostgresRepository(pool)
	c.DiscountRepo = discountRepo.NewPostgresDiscountRepository(pool)
	c.DiscountUsageRepo = discountRepo.NewPostgresUsageRepository(pool)
}

func (c *Container) initServices() {
	c.StoreService = storeService.NewStoreService(c.StoreRepo)
	c.ProductService = productService.NewProductService(c.ProductRepo)
	c.OutletService = outletService.NewOutletService(c.OutletRepo)
	c.MenuService = menuService.NewMenuService(c.MenuRepo, c.Cache)
	c.ConsultationService = consultationService.NewConsultationService(c.ConsultationRepo, c.Clock)
	c.CoinService = coinService.NewCoinService(c.CoinRepo, c.Clock)

	// Discount cần đếm completed orders của user (check new_users_only)
	// và resolve merchant của store khi admin tạo discount scope store.
	// Truyền function thay vì repo để giữ discount domain độc lập.
	c.DiscountService = discountService.NewDiscountService(
		c.DiscountRepo,
		c.DiscountUsageRepo,
		c.DB.Pool,
		c.Cache,
		c.Clock,
		c.OrderRepo.GetCompletedOrderCount,
		c.StoreService.GetMerchantID,
	)

	// Order gọi sang discount khi tạo đơn và award coins khi đơn completed.
	// Category lookup đi qua product domain để discount matching không
	// phụ thuộc category client gửi lên.
	c.OrderService = orderService.NewOrderService(
		c.OrderRepo,
		c.DiscountService,
		c.Clock,
		c.ProductService.GetCategoryIDs,
		func(ctx context.Context, order *orderModel.Order) {
			if err := c.CoinService.EarnFromOrder(ctx, order.UserID, order.ID, order.Total); err != nil {
				log.Printf("⚠️  Failed to award coins for order %s: %v", order.ID, err)
			}
		},
	)
}

func (c *Container) initHandlers() {
	c.StoreHandler = storeHandler.NewStoreHandler(c.StoreService)
	c.ProductHandler = productHandler.NewProductHandler(c.ProductService)
	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService)
	c.OutletHandler = outletHandler.NewOutletHandler(c.OutletService)
	c.MenuHandler = menuHandler.NewMenuHandler(c.MenuService)
	c.ConsultationHandler = consultationHandler.NewConsultationHandler(c.ConsultationService)
	c.CoinHandler = coinHandler.NewCoinHandler(c.CoinService)
	c.DiscountHandler = discountHandler.NewPublicHandler(c.DiscountService)
	c.DiscountAdminHandler = discountHandler.NewAdminHandler(c.DiscountService)
}

// Cleanup dọn dẹp resources khi shutdown.
// Gọi trong graceful shutdown của server.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("⚠️  Failed to close Redis: %v", err)
			} else {
				log.Println("✅ Redis connections closed")
			}
		}
	}

	log.Println("✅ Container cleanup completed")
}
