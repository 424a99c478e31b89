package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meli_dev_v1_202601/internal/controller"
	"meli_dev_v1_202601/internal/middleware"
	"meli_dev_v1_202601/internal/model"
	"meli_dev_v1_202601/internal/repository"
	"meli_dev_v1_202601/internal/router"
	"meli_dev_v1_202601/internal/service"
	"meli_dev_v1_202601/internal/task"
	"meli_dev_v1_202601/pkg/config"
	"meli_dev_v1_202601/pkg/database"
	"meli_dev_v1_202601/pkg/logger"
	"meli_dev_v1_202601/pkg/meli"
	"meli_dev_v1_202601/pkg/telegram"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic("配置加载失败: " + err.Error())
	}

	// 2. 初始化日志
	log := logger.Init(cfg.App.LogLevel, cfg.App.Debug)
	defer log.Sync()

	// 3. 初始化数据库
	db := initDatabase(cfg)

	// 4. 初始化依赖
	deps := initDependencies(cfg, db, log)

	// 5. 启动定时任务
	taskManager := initTasks(cfg, deps, log)
	defer taskManager.Stop()

	// 6. 初始化路由
	r := setupEngine(cfg, log)
	router.InitRoutes(r,
		deps.Controllers.Listing,
		deps.Controllers.Webhook,
		deps.Controllers.Auth,
		deps.Controllers.Report,
		deps.Controllers.Product,
	)

	// 7. 启动服务
	startServer(cfg, r, log)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Supplier repository.SupplierRepository
	Product  repository.ProductRepository
	Customer repository.CustomerRepository
	Order    repository.OrderRepository
	Report   repository.ReportRepository
}

// Services 服务集合
type Services struct {
	Listing service.ListingService
	Order   service.OrderService
	Report  service.ReportService
	Import  service.ImportService
}

// Controllers 控制器集合
type Controllers struct {
	Listing *controller.ListingController
	Webhook *controller.WebhookController
	Auth    *controller.AuthController
	Report  *controller.ReportController
	Product *controller.ProductController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.Database.DSN, cfg.App.Debug,
		// Supplier
		&model.Supplier{},
		// Product
		&model.Product{},
		// Customer
		&model.Customer{}, &model.Address{},
		// Order
		&model.Order{}, &model.OrderItem{},
		// Report
		&model.Report{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Supplier: repository.NewSupplierRepository(db),
		Product:  repository.NewProductRepository(db),
		Customer: repository.NewCustomerRepository(db),
		Order:    repository.NewOrderRepository(db),
		Report:   repository.NewReportRepository(db),
	}

	// -------- 市场客户端 --------
	tokens := meli.NewClientCredentials(meli.DefaultBaseURL, cfg.Meli.ClientID, cfg.Meli.ClientSecret)
	meliClient := meli.NewClient(&meli.Config{
		SiteID:    cfg.Meli.SiteID,
		RetryWait: cfg.Meli.RetryWait,
	}, tokens, log)

	// -------- 供应商网关，注册顺序即选品优先级 --------
	registry := service.NewSupplierRegistry()
	if cfg.Supplier.CJEmail != "" && cfg.Supplier.CJAPIKey != "" {
		registry.Register(model.SupplierCJDropshipping,
			service.NewCJGateway(cfg.Supplier.CJEmail, cfg.Supplier.CJAPIKey, log))
	}
	if cfg.Supplier.SpocketKey != "" {
		registry.Register(model.SupplierSpocket,
			service.NewSpocketGateway(cfg.Supplier.SpocketKey, log))
	}

	// -------- 通知渠道 --------
	notifier := telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.ChatID)

	// -------- 业务服务 --------
	services := &Services{
		Listing: service.NewListingService(meliClient, registry, repos.Supplier, repos.Product,
			cfg.Meli.ItemsPerDay, cfg.Meli.MarginRate, log),
		Order: service.NewOrderService(meliClient, registry,
			repos.Order, repos.Customer, repos.Product, repos.Supplier, log),
		Report: service.NewReportService(repos.Order, repos.Product, repos.Report,
			notifier, cfg.Meli.MarginRate, log),
		Import: service.NewImportService(repos.Product, repos.Supplier, cfg.Meli.MarginRate, log),
	}

	// -------- Controller 层 --------
	controllers := &Controllers{
		Listing: controller.NewListingController(services.Listing, log),
		Webhook: controller.NewWebhookController(services.Order, log),
		Auth:    controller.NewAuthController(&cfg.Meli, log),
		Report:  controller.NewReportController(services.Report, log),
		Product: controller.NewProductController(repos.Product, services.Import, log),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(cfg *config.Config, deps *Dependencies, log *zap.SugaredLogger) *task.TaskManager {
	tm := task.NewTaskManager(
		&task.TaskManagerDeps{
			ListingService: deps.Services.Listing,
			ReportService:  deps.Services.Report,
		},
		&task.TaskManagerConfig{
			ListingCron:     cfg.Task.ListingCron,
			ReportCron:      cfg.Task.ReportCron,
			MonitorInterval: cfg.Task.MonitorInterval,
		},
		log,
	)
	tm.Start()
	return tm
}

// ==================== 服务启动 ====================

// setupEngine 创建 gin 引擎
func setupEngine(cfg *config.Config, log *zap.SugaredLogger) *gin.Engine {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLog(log))
	return r
}

// startServer 启动服务并等待退出信号
func startServer(cfg *config.Config, r *gin.Engine, log *zap.SugaredLogger) {
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Infof("服务已启动: 端口=%s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("收到退出信号，正在优雅关闭...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("服务关闭异常: %v", err)
	}
	log.Info("服务已退出")
}
