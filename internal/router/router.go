package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meli_dev_v1_202601/internal/controller"
	"meli_dev_v1_202601/internal/middleware"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	listingCtl *controller.ListingController,
	webhookCtl *controller.WebhookController,
	authCtl *controller.AuthController,
	reportCtl *controller.ReportController,
	productCtl *controller.ProductController) {

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API 路由组
	api := r.Group("/api/v1")
	{
		// listing 自动上架
		listings := api.Group("/listings")
		{
			// POST /api/v1/listings/auto 手动触发有冷却，防止重复起任务
			listings.POST("/auto", middleware.TriggerRateLimit("listing_auto", time.Minute), listingCtl.CreateListings)
			listings.GET("/trends", listingCtl.GetTrends)
		}
		// webhook 市场通知
		webhooks := api.Group("/webhooks")
		{
			// POST /api/v1/webhooks/orders
			webhooks.POST("/orders", webhookCtl.OrderNotification)
		}
		// auth 授权
		auth := api.Group("/auth")
		{
			// GET /api/v1/auth/login
			auth.GET("/login", authCtl.Login)
			// GET /api/v1/auth/callback
			auth.GET("/callback", authCtl.Callback)
		}
		// report 报表
		reports := api.Group("/reports")
		{
			// POST /api/v1/reports/daily
			reports.POST("/daily", middleware.TriggerRateLimit("report_daily", time.Minute), reportCtl.SendDaily)
		}
		// product 商品
		products := api.Group("/products")
		{
			products.GET("", productCtl.GetProductList)
			products.POST("/import", productCtl.ImportProducts)
		}
	}
}
