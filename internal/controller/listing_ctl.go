package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/service"
)

type ListingController struct {
	listingSvc service.ListingService
	log        *zap.SugaredLogger
}

func NewListingController(listingSvc service.ListingService, log *zap.SugaredLogger) *ListingController {
	return &ListingController{listingSvc: listingSvc, log: log}
}

// CreateListings 手动触发一轮选品上架
// @Summary 触发自动上架
// @Description 后台执行一轮 热词 → 选品 → 定价 → 上架 流水线，立即返回
// @Tags Listing (上架模块)
// @Produce json
// @Success 202 {object} map[string]string "已受理"
// @Failure 429 {object} map[string]string "触发过于频繁"
// @Router /api/v1/listings/auto [post]
func (ctrl *ListingController) CreateListings(c *gin.Context) {
	// 流水线耗时较长，脱离请求生命周期跑
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		count, err := ctrl.listingSvc.CreateDailyListings(ctx)
		if err != nil {
			ctrl.log.Errorf("[Listing] 手动触发执行失败: %v", err)
			return
		}
		ctrl.log.Infof("[Listing] 手动触发完成: 上架=%d", count)
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "上架任务已受理，稍后查看日志与商品列表"})
}

// GetTrends 查看当前热词
// @Summary 获取市场热词
// @Description 实时拉取站点热搜词，拉取失败返回空列表
// @Tags Listing (上架模块)
// @Produce json
// @Param limit query int false "数量" default(10)
// @Success 200 {object} map[string]interface{} "热词列表"
// @Router /api/v1/listings/trends [get]
func (ctrl *ListingController) GetTrends(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit 必须是正整数"})
			return
		}
		limit = n
	}

	trends := ctrl.listingSvc.GetTrends(c.Request.Context(), limit)
	c.JSON(http.StatusOK, gin.H{
		"total":  len(trends),
		"trends": trends,
	})
}
