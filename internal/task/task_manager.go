package task

import (
	"time"

	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台定时任务
// 管理范围：每日上架、每日报表、挂单巡检
type TaskManager struct {
	listingTask *ListingTask
	reportTask  *ReportTask
	monitorTask *OrderMonitorTask
	log         *zap.SugaredLogger
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	ListingService service.ListingService
	ReportService  service.ReportService
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	ListingCron     string
	ReportCron      string
	MonitorInterval time.Duration
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig, log *zap.SugaredLogger) *TaskManager {
	tm := &TaskManager{log: log}

	if deps.ListingService != nil && cfg.ListingCron != "" {
		tm.listingTask = NewListingTask(deps.ListingService, cfg.ListingCron, log)
	}
	if deps.ReportService != nil && cfg.ReportCron != "" {
		tm.reportTask = NewReportTask(deps.ReportService, cfg.ReportCron, log)
	}
	if deps.ReportService != nil && cfg.MonitorInterval > 0 {
		tm.monitorTask = NewOrderMonitorTask(deps.ReportService, cfg.MonitorInterval, log)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	tm.log.Info("[TaskManager] 正在启动后台任务...")

	if tm.listingTask != nil {
		tm.listingTask.Start()
	}
	if tm.reportTask != nil {
		tm.reportTask.Start()
	}
	if tm.monitorTask != nil {
		tm.monitorTask.Start()
	}

	tm.log.Info("[TaskManager] 后台任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	tm.log.Info("[TaskManager] 正在停止后台任务...")

	if tm.listingTask != nil {
		tm.listingTask.Stop()
	}
	if tm.reportTask != nil {
		tm.reportTask.Stop()
	}
	if tm.monitorTask != nil {
		tm.monitorTask.Stop()
	}

	tm.log.Info("[TaskManager] 后台任务已全部停止")
}
