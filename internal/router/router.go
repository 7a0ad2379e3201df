package router

import (
	"time"

	"github.com/dSumitabha/multi-tenant/internal/config"
	"github.com/dSumitabha/multi-tenant/internal/handler"
	"github.com/dSumitabha/multi-tenant/internal/middleware"
	"github.com/dSumitabha/multi-tenant/internal/repository"
	"github.com/dSumitabha/multi-tenant/internal/service"
	"github.com/dSumitabha/multi-tenant/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Master-database services (auth) are built once; tenant-scoped services are
// resolved per request by the TenantResolver middleware through the manager.
func New(cfg *config.Config, master *gorm.DB, rdb *redis.Client, manager *tenant.Manager) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(200, time.Minute))

	// ── Master-database services ─────────────────────────────────────────────
	userRepo := repository.NewUserRepository(master)
	tenantRepo := repository.NewTenantRepository(master)
	authSvc := service.NewAuthService(userRepo, tenantRepo, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler()
	suppliersH := handler.NewSuppliersHandler()
	purchaseOrdersH := handler.NewPurchaseOrdersHandler()
	salesOrdersH := handler.NewSalesOrdersHandler()
	inventoryH := handler.NewInventoryHandler()

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(master, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes: JWT first, then tenant resolution off the verified
	// claims. Every handler below runs against the resolved tenant backend.
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.TenantResolver(manager))
	{
		// Catalog — every role reads, only the owner extends it
		v1.GET("/products", middleware.RequireRole("owner", "manager", "staff"), productsH.List)
		v1.POST("/products", middleware.RequireRole("owner"), productsH.Create)

		suppliers := v1.Group("/suppliers")
		{
			suppliers.POST("", middleware.RequireRole("owner", "manager"), suppliersH.Create)
			suppliers.GET("", middleware.RequireRole("owner", "manager", "staff"), suppliersH.List)
		}

		// Orders — every role reads, owner/manager create and advance
		po := v1.Group("/purchase-orders")
		{
			po.POST("", middleware.RequireRole("owner", "manager"), purchaseOrdersH.Create)
			po.GET("", middleware.RequireRole("owner", "manager", "staff"), purchaseOrdersH.List)
			po.PATCH("/:id/status", middleware.RequireRole("owner", "manager"), purchaseOrdersH.Advance)
		}

		so := v1.Group("/sales-orders")
		{
			so.POST("", middleware.RequireRole("owner", "manager"), salesOrdersH.Create)
			so.GET("", middleware.RequireRole("owner", "manager", "staff"), salesOrdersH.List)
			so.PATCH("/:id/status", middleware.RequireRole("owner", "manager"), salesOrdersH.Advance)
		}

		// Manual adjustments bypass the order flows — owner/manager only
		v1.POST("/inventory/adjustment", middleware.RequireRole("owner", "manager"), inventoryH.Adjust)

		v1.GET("/stock-movements", middleware.RequireRole("owner", "manager", "staff"), inventoryH.ListMovements)
		v1.GET("/dashboard/inventory", middleware.RequireRole("owner", "manager", "staff"), inventoryH.Summary)
	}

	return r
}
