package router

import (
	"time"

	"agartpos/internal/config"
	"agartpos/internal/handler"
	"agartpos/internal/infra"
	"agartpos/internal/middleware"
	"agartpos/internal/repository"
	"agartpos/internal/service"
	"agartpos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// New wires repositories, services and handlers into the HTTP surface.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var cache *infra.ProductCache
	if rdb != nil {
		cache = infra.NewProductCache(rdb, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	}

	// Repositories
	productRepo := repository.NewProductRepository(db)
	logRepo := repository.NewInventoryLogRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	ledgerRepo := repository.NewCreditLedgerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	staffRepo := repository.NewStaffRepository(db)

	// Services
	stockSvc := service.NewStockService(productRepo, logRepo, cache)
	creditSvc := service.NewCreditService(customerRepo, ledgerRepo)
	shiftSvc := service.NewShiftService(shiftRepo, dispatcher)
	saleSvc := service.NewSaleService(saleRepo, productRepo, stockSvc, creditSvc, shiftSvc, dispatcher, cache)
	productSvc := service.NewProductService(productRepo, cache)
	customerSvc := service.NewCustomerService(customerRepo)
	authSvc := service.NewAuthService(staffRepo, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)

	// Handlers
	healthH := handler.NewHealthHandler(db)
	authH := handler.NewAuthHandler(authSvc)
	productH := handler.NewProductHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(stockSvc)
	customerH := handler.NewCustomerHandler(customerSvc, creditSvc)
	saleH := handler.NewSaleHandler(saleSvc)
	shiftH := handler.NewShiftHandler(shiftSvc)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(),
	)

	r.GET("/health", healthH.Check)
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", middleware.RateLimiter(30, 10), authH.Login)
	auth.POST("/refresh", authH.Refresh)

	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(cfg.JWTSecret))
	{
		staff := authed.Group("/staff", middleware.Require(middleware.CapManageStaff))
		staff.POST("", authH.CreateStaff)
		staff.GET("", authH.ListStaff)
		staff.DELETE("/:id", authH.DeactivateStaff)

		products := authed.Group("/products")
		products.GET("", productH.List)
		products.GET("/:id", productH.Get)
		products.GET("/low-stock", middleware.Require(middleware.CapViewReports), productH.LowStock)
		products.POST("", middleware.Require(middleware.CapManageCatalog), productH.Create)
		products.PUT("/:id", middleware.Require(middleware.CapManageCatalog), productH.Update)
		products.DELETE("/:id", middleware.Require(middleware.CapManageCatalog), productH.Archive)
		products.POST("/:id/reactivate", middleware.Require(middleware.CapManageCatalog), productH.Reactivate)
		products.POST("/:id/stock", middleware.Require(middleware.CapAdjustStock), inventoryH.Adjust)

		authed.GET("/inventory/movements", middleware.Require(middleware.CapViewReports), inventoryH.Movements)

		customers := authed.Group("/customers")
		customers.GET("", customerH.List)
		customers.GET("/:id", customerH.Get)
		customers.POST("", middleware.Require(middleware.CapManageCredit), customerH.Create)
		customers.GET("/:id/statement", middleware.Require(middleware.CapManageCredit), customerH.Statement)
		customers.POST("/:id/repayments", middleware.Require(middleware.CapManageCredit), customerH.Repay)

		sales := authed.Group("/sales", middleware.Require(middleware.CapSell))
		sales.POST("", saleH.Create)
		sales.GET("", saleH.List)
		sales.GET("/:id", saleH.Get)
		sales.PATCH("/:id/status", saleH.UpdateStatus)

		shifts := authed.Group("/shifts")
		shifts.POST("", middleware.Require(middleware.CapSell), shiftH.Open)
		shifts.GET("/active", middleware.Require(middleware.CapSell), shiftH.Active)
		shifts.POST("/close", middleware.Require(middleware.CapCloseShift), shiftH.Close)
		shifts.GET("/:id", middleware.Require(middleware.CapViewReports), shiftH.Report)
		shifts.GET("", middleware.Require(middleware.CapViewReports), shiftH.History)
	}

	return r
}
