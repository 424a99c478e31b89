package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"meli_dev_v1_202601/internal/model"
)

// ==================== 接口定义 ====================

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 连同明细一起落库（同一事务）
	Create(ctx context.Context, order *model.Order) error
	// GetByID / GetByMeliOrderID 未找到返回 (nil, nil)，命中时带明细
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByMeliOrderID(ctx context.Context, meliOrderID string) (*model.Order, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	// Delete 幂等删除，订单独占明细，明细随单删除
	Delete(ctx context.Context, id int64) (found bool, err error)

	// 列表查询
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	ListByStatus(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]model.Order, error)
	ListByCustomer(ctx context.Context, customerID int64, page, pageSize int) ([]model.Order, error)
	// ListPendingBefore 查询某时点之前创建、仍为待支付的订单（挂单巡检用）
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error)

	// 明细
	AddItem(ctx context.Context, orderID int64, item *model.OrderItem) error
	GetItems(ctx context.Context, orderID int64) ([]model.OrderItem, error)

	// 统计
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error)
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
	// SumPaidBetween 统计区间内已支付订单的总额与单数
	SumPaidBetween(ctx context.Context, start, end time.Time) (total float64, count int64, err error)
}

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	Status     model.OrderStatus
	CustomerID int64
	Page       int
	PageSize   int
}

// ==================== 仓储实现 ====================

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	// gorm 自动级联写入 Items
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) GetByMeliOrderID(ctx context.Context, meliOrderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("meli_order_id = ?", meliOrderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *orderRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先删明细再删主单，sqlite 测试环境不依赖外键级联
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	return found, err
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID > 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 100
	}

	err := query.
		Order("ordered_at DESC").
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepo) ListByStatus(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]model.Order, error) {
	orders, _, err := r.List(ctx, OrderFilter{Status: status, Page: page, PageSize: pageSize})
	return orders, err
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID int64, page, pageSize int) ([]model.Order, error) {
	orders, _, err := r.List(ctx, OrderFilter{CustomerID: customerID, Page: page, PageSize: pageSize})
	return orders, err
}

func (r *orderRepo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND ordered_at < ?", model.OrderStatusPending, cutoff).
		Order("ordered_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) AddItem(ctx context.Context, orderID int64, item *model.OrderItem) error {
	item.OrderID = orderID
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *orderRepo) GetItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *orderRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&total).Error
	return total, err
}

func (r *orderRepo) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("status = ?", status).
		Count(&total).Error
	return total, err
}

func (r *orderRepo) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("ordered_at >= ? AND ordered_at < ?", start, end).
		Count(&total).Error
	return total, err
}

func (r *orderRepo) SumPaidBetween(ctx context.Context, start, end time.Time) (float64, int64, error) {
	type row struct {
		Total float64
		Count int64
	}
	var res row
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("COALESCE(SUM(total_value), 0) AS total, COUNT(*) AS count").
		Where("status IN ? AND ordered_at >= ? AND ordered_at < ?",
			[]model.OrderStatus{model.OrderStatusPaid, model.OrderStatusShipped, model.OrderStatusDelivered},
			start, end).
		Scan(&res).Error
	return res.Total, res.Count, err
}
