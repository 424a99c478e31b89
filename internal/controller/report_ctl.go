package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/service"
)

type ReportController struct {
	reportSvc service.ReportService
	log       *zap.SugaredLogger
}

func NewReportController(reportSvc service.ReportService, log *zap.SugaredLogger) *ReportController {
	return &ReportController{reportSvc: reportSvc, log: log}
}

// SendDaily 手动触发日报
// @Summary 触发每日经营报告
// @Description 立即汇总当日数据并推送 Telegram，不影响定时任务
// @Tags Report (报表模块)
// @Produce json
// @Success 202 {object} map[string]string "已受理"
// @Failure 429 {object} map[string]string "触发过于频繁"
// @Router /api/v1/reports/daily [post]
func (ctrl *ReportController) SendDaily(c *gin.Context) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := ctrl.reportSvc.SendDailyReport(ctx); err != nil {
			ctrl.log.Errorf("[Report] 手动日报执行失败: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "日报任务已受理"})
}
