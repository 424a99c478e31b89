package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/service"
)

// pendingOrderAge 超过该时长未支付的订单进入告警
const pendingOrderAge = 24 * time.Hour

// ==================== OrderMonitorTask 挂单巡检任务 ====================

// OrderMonitorTask 周期巡检长期未支付订单，固定间隔轮询
type OrderMonitorTask struct {
	reportSvc service.ReportService
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
	log       *zap.SugaredLogger
}

// NewOrderMonitorTask 创建巡检任务
func NewOrderMonitorTask(reportSvc service.ReportService, interval time.Duration, log *zap.SugaredLogger) *OrderMonitorTask {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &OrderMonitorTask{
		reportSvc: reportSvc,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		log:       log,
	}
}

// Start 启动巡检循环
func (t *OrderMonitorTask) Start() {
	go t.loop()
	t.log.Infof("[OrderMonitorTask] 已启动 (每%s)", t.interval)
}

// Stop 停止任务，等待当前轮次结束
func (t *OrderMonitorTask) Stop() {
	close(t.stopCh)
	<-t.doneCh
	t.log.Info("[OrderMonitorTask] 已停止")
}

func (t *OrderMonitorTask) loop() {
	defer close(t.doneCh)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := t.reportSvc.CheckPendingOrders(ctx, pendingOrderAge); err != nil {
				t.log.Errorf("[OrderMonitorTask] 巡检失败: %v", err)
			}
			cancel()
		}
	}
}
