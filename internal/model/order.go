package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 订单状态常量 ====================

// OrderStatus 订单状态
// 状态流转由市场/支付回调驱动，本层不做状态机校验
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // 待支付
	OrderStatusPaid      OrderStatus = "paid"      // 已支付
	OrderStatusShipped   OrderStatus = "shipped"   // 已发货
	OrderStatusDelivered OrderStatus = "delivered" // 已签收
	OrderStatusCancelled OrderStatus = "cancelled" // 已取消
)

// ==================== Order 订单主表 ====================

// Order 订单
// 约束：TotalValue = ProductsValue + ShippingValue，创建时由构造方保证
type Order struct {
	BaseModel
	MeliOrderID string `gorm:"size:100;uniqueIndex" json:"meli_order_id"`

	CustomerID        int64 `gorm:"index" json:"customer_id"`
	DeliveryAddressID int64 `gorm:"index" json:"delivery_address_id"`

	// --- 金额 ---
	TotalValue    float64 `gorm:"not null" json:"total_value"`
	ShippingValue float64 `gorm:"default:0" json:"shipping_value"`
	ProductsValue float64 `gorm:"not null" json:"products_value"`

	// --- 状态与时间线 ---
	Status      OrderStatus `gorm:"size:20;index;default:pending" json:"status"`
	OrderedAt   time.Time   `json:"ordered_at"`
	PaidAt      *time.Time  `json:"paid_at"`
	ShippedAt   *time.Time  `json:"shipped_at"`
	DeliveredAt *time.Time  `json:"delivered_at"`

	TrackingCode string `gorm:"size:100" json:"tracking_code"`

	// --- 市场侧原始数据 (JSONB) ---
	RawData datatypes.JSON `gorm:"type:jsonb" json:"-"`

	// --- 关联 ---
	// 订单独占其明细，删除订单级联删除明细
	Customer        *Customer   `gorm:"foreignKey:CustomerID" json:"-"`
	DeliveryAddress *Address    `gorm:"foreignKey:DeliveryAddressID" json:"-"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// ==================== OrderItem 订单明细 ====================

// OrderItem 订单明细
// UnitPrice 为下单时刻的成交价，与商品现价解耦
type OrderItem struct {
	BaseModel
	OrderID   int64 `gorm:"index;not null" json:"order_id"`
	ProductID int64 `gorm:"index" json:"product_id"`

	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
