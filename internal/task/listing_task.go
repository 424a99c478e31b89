package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/service"
)

// ==================== ListingTask 每日自动上架任务 ====================

// ListingTask 按配置的 cron 表达式跑选品上架流水线
type ListingTask struct {
	listingSvc service.ListingService
	spec       string
	cron       *cron.Cron
	log        *zap.SugaredLogger
}

// NewListingTask 创建上架任务
func NewListingTask(listingSvc service.ListingService, spec string, log *zap.SugaredLogger) *ListingTask {
	return &ListingTask{
		listingSvc: listingSvc,
		spec:       spec,
		cron:       cron.New(cron.WithSeconds()),
		log:        log,
	}
}

// Start 启动定时任务
func (t *ListingTask) Start() {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.run(ctx)
	})
	if err != nil {
		t.log.Errorf("[ListingTask] 定时任务启动失败: spec=%q err=%v", t.spec, err)
		return
	}

	t.cron.Start()
	t.log.Infof("[ListingTask] 已启动 (%s)", t.spec)
}

// Stop 停止任务，等待在跑的轮次结束
func (t *ListingTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.log.Info("[ListingTask] 已停止")
}

func (t *ListingTask) run(ctx context.Context) {
	t.log.Info("[ListingTask] 开始执行每日自动上架...")
	count, err := t.listingSvc.CreateDailyListings(ctx)
	if err != nil {
		t.log.Errorf("[ListingTask] 执行失败: %v", err)
		return
	}
	t.log.Infof("[ListingTask] 执行完成: 上架=%d", count)
}
