package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/service"
)

type WebhookController struct {
	orderSvc service.OrderService
	log      *zap.SugaredLogger
}

func NewWebhookController(orderSvc service.OrderService, log *zap.SugaredLogger) *WebhookController {
	return &WebhookController{orderSvc: orderSvc, log: log}
}

// meliNotification ML 通知报文
type meliNotification struct {
	Topic    string `json:"topic" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	UserID   int64  `json:"user_id"`
	Attempts int    `json:"attempts"`
}

// OrderNotification 接收订单通知
// @Summary 订单 webhook
// @Description 接收 Mercado Livre 订单通知；必须快速返回 200，实际同步在后台执行
// @Tags Webhook (通知模块)
// @Accept json
// @Produce json
// @Param notification body meliNotification true "通知报文"
// @Success 200 {object} map[string]string "已接收"
// @Failure 400 {object} map[string]string "报文格式错误"
// @Router /api/v1/webhooks/orders [post]
func (ctrl *WebhookController) OrderNotification(c *gin.Context) {
	var notif meliNotification
	if err := c.ShouldBindJSON(&notif); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "报文格式错误: " + err.Error()})
		return
	}

	// ML 要求 500ms 内应答，否则会重发，处理放后台
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := ctrl.orderSvc.ProcessWebhook(ctx, notif.Topic, notif.Resource); err != nil {
			ctrl.log.Errorf("[Webhook] 订单同步失败: topic=%s resource=%s err=%v",
				notif.Topic, notif.Resource, err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"message": "received"})
}
