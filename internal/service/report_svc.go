package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"meli_dev_v1_202601/internal/model"
	"meli_dev_v1_202601/internal/repository"
	"meli_dev_v1_202601/pkg/telegram"
)

// lowStockThreshold 库存低于该值计入预警
const lowStockThreshold = 5

// ==================== 接口定义 ====================

// ReportService 经营报表与挂单巡检
type ReportService interface {
	// SendDailyReport 汇总当日经营数据，落库并推送 Telegram
	SendDailyReport(ctx context.Context) error
	// CheckPendingOrders 巡检超时未支付订单并告警
	CheckPendingOrders(ctx context.Context, olderThan time.Duration) error
}

// DailyMetrics 当日经营指标
type DailyMetrics struct {
	Date           string  `json:"date"`
	TotalOrders    int64   `json:"total_orders"`
	PaidOrders     int64   `json:"paid_orders"`
	TotalSales     float64 `json:"total_sales"`
	AvgTicket      float64 `json:"avg_ticket"`
	EstProfit      float64 `json:"est_profit"`
	ActiveProducts int64   `json:"active_products"`
	LowStock       int64   `json:"low_stock"`
}

type reportService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	reportRepo  repository.ReportRepository
	notifier    telegram.Notifier
	marginRate  float64
	log         *zap.SugaredLogger
}

// NewReportService 创建报表服务
func NewReportService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	reportRepo repository.ReportRepository,
	notifier telegram.Notifier,
	marginRate float64,
	log *zap.SugaredLogger,
) ReportService {
	return &reportService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		reportRepo:  reportRepo,
		notifier:    notifier,
		marginRate:  marginRate,
		log:         log,
	}
}

// ==================== 日报 ====================

func (s *reportService) SendDailyReport(ctx context.Context) error {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	metrics, err := s.collect(ctx, start, now)
	if err != nil {
		return fmt.Errorf("collect daily metrics: %w", err)
	}

	payload, _ := json.Marshal(metrics)
	report := &model.Report{
		Type:        "daily",
		PeriodStart: start,
		PeriodEnd:   now,
		TotalOrders: metrics.TotalOrders,
		TotalSales:  metrics.TotalSales,
		TotalProfit: metrics.EstProfit,
		Payload:     datatypes.JSON(payload),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return fmt.Errorf("persist daily report: %w", err)
	}

	if err := s.notifier.SendMessage(ctx, formatDailyReport(metrics)); err != nil {
		// 已落库，推送失败只告警不回滚
		s.log.Errorf("[Report] 日报推送失败: %v", err)
		return err
	}
	s.log.Infof("[Report] 日报已推送: 订单=%d 销售额=%.2f", metrics.TotalOrders, metrics.TotalSales)
	return nil
}

func (s *reportService) collect(ctx context.Context, start, end time.Time) (*DailyMetrics, error) {
	totalOrders, err := s.orderRepo.CountCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	totalSales, paidOrders, err := s.orderRepo.SumPaidBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	activeProducts, err := s.productRepo.CountByStatus(ctx, model.ProductStatusActive)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.productRepo.CountLowStock(ctx, lowStockThreshold)
	if err != nil {
		return nil, err
	}

	// 利润按配置毛利率估算，售价 = 成本 ×(1+毛利率)
	estProfit := 0.0
	if s.marginRate > 0 {
		estProfit = totalSales * s.marginRate / (1 + s.marginRate)
	}
	avgTicket := 0.0
	if paidOrders > 0 {
		avgTicket = totalSales / float64(paidOrders)
	}

	return &DailyMetrics{
		Date:           start.Format("2006-01-02"),
		TotalOrders:    totalOrders,
		PaidOrders:     paidOrders,
		TotalSales:     totalSales,
		AvgTicket:      avgTicket,
		EstProfit:      estProfit,
		ActiveProducts: activeProducts,
		LowStock:       lowStock,
	}, nil
}

func formatDailyReport(m *DailyMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *每日经营报告* (%s)\n\n", m.Date)
	fmt.Fprintf(&b, "🛒 新增订单: %d\n", m.TotalOrders)
	fmt.Fprintf(&b, "💰 已支付: %d 单 / R$ %.2f\n", m.PaidOrders, m.TotalSales)
	if m.PaidOrders > 0 {
		fmt.Fprintf(&b, "🧾 客单价: R$ %.2f\n", m.AvgTicket)
	}
	fmt.Fprintf(&b, "📈 预估利润: R$ %.2f\n", m.EstProfit)
	fmt.Fprintf(&b, "📦 在售商品: %d\n", m.ActiveProducts)
	if m.LowStock > 0 {
		fmt.Fprintf(&b, "⚠️ 低库存商品: %d\n", m.LowStock)
	}
	return b.String()
}

// ==================== 挂单巡检 ====================

func (s *reportService) CheckPendingOrders(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	orders, err := s.orderRepo.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list pending orders: %w", err)
	}
	if len(orders) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⏰ *挂单告警*: %d 笔订单超过 %s 未支付\n\n", len(orders), olderThan)
	for i, o := range orders {
		if i >= 10 {
			fmt.Fprintf(&b, "… 以及另外 %d 笔\n", len(orders)-10)
			break
		}
		fmt.Fprintf(&b, "- 订单 %s，下单于 %s，金额 R$ %.2f\n",
			o.MeliOrderID, o.OrderedAt.Format("01-02 15:04"), o.TotalValue)
	}
	if err := s.notifier.SendMessage(ctx, b.String()); err != nil {
		s.log.Errorf("[Report] 挂单告警推送失败: %v", err)
		return err
	}
	s.log.Warnf("[Report] 挂单告警已推送: %d 笔", len(orders))
	return nil
}
