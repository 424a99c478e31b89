package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meli_dev_v1_202601/internal/model"
	"meli_dev_v1_202601/internal/repository"
)

// fakeNotifier 捕获推送文本
type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) SendMessage(ctx context.Context, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

type reportFixture struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	reports  repository.ReportRepository
	notifier *fakeNotifier
	svc      ReportService
}

func newReportFixture(t *testing.T) *reportFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")
	require.NoError(t, db.AutoMigrate(
		&model.Product{}, &model.Order{}, &model.OrderItem{}, &model.Report{},
	), "数据库迁移失败")

	fx := &reportFixture{
		orders:   repository.NewOrderRepository(db),
		products: repository.NewProductRepository(db),
		reports:  repository.NewReportRepository(db),
		notifier: &fakeNotifier{},
	}
	fx.svc = NewReportService(fx.orders, fx.products, fx.reports, fx.notifier, 0.3, zap.NewNop().Sugar())
	return fx
}

func seedOrder(t *testing.T, fx *reportFixture, meliID string, status model.OrderStatus, total float64, orderedAt time.Time) {
	require.NoError(t, fx.orders.Create(context.Background(), &model.Order{
		MeliOrderID:   meliID,
		TotalValue:    total,
		ProductsValue: total,
		Status:        status,
		OrderedAt:     orderedAt,
	}))
}

func TestSendDailyReport_AggregatesAndPersists(t *testing.T) {
	fx := newReportFixture(t)
	ctx := context.Background()
	now := time.Now()

	seedOrder(t, fx, "o1", model.OrderStatusPaid, 100, now)
	seedOrder(t, fx, "o2", model.OrderStatusPaid, 30, now)
	seedOrder(t, fx, "o3", model.OrderStatusPending, 50, now)
	// 昨天的订单不计入今日窗口
	seedOrder(t, fx, "o4", model.OrderStatusPaid, 999, now.Add(-48*time.Hour))

	require.NoError(t, fx.products.Create(ctx, &model.Product{
		Title: "p1", CostPrice: 1, SalePrice: 2, SKU: "k1", Stock: 3,
		Status: model.ProductStatusActive,
	}))

	require.NoError(t, fx.svc.SendDailyReport(ctx))

	// 落库
	report, err := fx.reports.GetLatest(ctx, "daily")
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.EqualValues(t, 3, report.TotalOrders)
	assert.InDelta(t, 130.0, report.TotalSales, 1e-9)
	// 利润按毛利率折算：130 × 0.3/1.3 = 30
	assert.InDelta(t, 30.0, report.TotalProfit, 1e-9)

	// 推送
	require.Len(t, fx.notifier.messages, 1)
	msg := fx.notifier.messages[0]
	assert.Contains(t, msg, "每日经营报告")
	assert.Contains(t, msg, "130.00")
	assert.Contains(t, msg, "低库存")
}

func TestCheckPendingOrders_QuietWhenNothingStale(t *testing.T) {
	fx := newReportFixture(t)
	seedOrder(t, fx, "fresh", model.OrderStatusPending, 10, time.Now().Add(-time.Hour))

	require.NoError(t, fx.svc.CheckPendingOrders(context.Background(), 24*time.Hour))
	assert.Empty(t, fx.notifier.messages, "没有超时挂单不应打扰运营")
}

func TestCheckPendingOrders_AlertsOnStaleOrders(t *testing.T) {
	fx := newReportFixture(t)
	seedOrder(t, fx, "stale-1", model.OrderStatusPending, 10, time.Now().Add(-30*time.Hour))
	seedOrder(t, fx, "stale-2", model.OrderStatusPending, 20, time.Now().Add(-48*time.Hour))
	// 已支付的不算挂单
	seedOrder(t, fx, "paid-old", model.OrderStatusPaid, 30, time.Now().Add(-48*time.Hour))

	require.NoError(t, fx.svc.CheckPendingOrders(context.Background(), 24*time.Hour))
	require.Len(t, fx.notifier.messages, 1)
	msg := fx.notifier.messages[0]
	assert.Contains(t, msg, "stale-1")
	assert.Contains(t, msg, "stale-2")
	assert.NotContains(t, msg, "paid-old")
}
