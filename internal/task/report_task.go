package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/service"
)

// ==================== ReportTask 每日报表任务 ====================

// ReportTask 定点汇总经营数据并推送
type ReportTask struct {
	reportSvc service.ReportService
	spec      string
	cron      *cron.Cron
	log       *zap.SugaredLogger
}

// NewReportTask 创建报表任务
func NewReportTask(reportSvc service.ReportService, spec string, log *zap.SugaredLogger) *ReportTask {
	return &ReportTask{
		reportSvc: reportSvc,
		spec:      spec,
		cron:      cron.New(cron.WithSeconds()),
		log:       log,
	}
}

// Start 启动定时任务
func (t *ReportTask) Start() {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := t.reportSvc.SendDailyReport(ctx); err != nil {
			t.log.Errorf("[ReportTask] 日报执行失败: %v", err)
		}
	})
	if err != nil {
		t.log.Errorf("[ReportTask] 定时任务启动失败: spec=%q err=%v", t.spec, err)
		return
	}

	t.cron.Start()
	t.log.Infof("[ReportTask] 已启动 (%s)", t.spec)
}

// Stop 停止任务
func (t *ReportTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.log.Info("[ReportTask] 已停止")
}
