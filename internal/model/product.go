package model

import (
	"github.com/lib/pq"
)

// ==================== 商品状态常量 ====================

// ProductStatus 商品状态
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"       // 已上架
	ProductStatusInactive   ProductStatus = "inactive"     // 已下架
	ProductStatusOutOfStock ProductStatus = "out_of_stock" // 无库存
	ProductStatusPending    ProductStatus = "pending"      // 待上架（默认）
)

// ListingStockCap 刊登库存上限
// 供应商反馈的库存再多，单个刊登也只放出 50 件
const ListingStockCap = 50

// ==================== Product 商品 ====================

// Product 自有目录商品，由刊登流水线或 CSV 导入创建
type Product struct {
	BaseModel

	// --- 基本信息 ---
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:100" json:"category"`

	// --- 价格 ---
	// SalePrice = CostPrice * (1 + Margin)，仅在创建和显式更新时计算
	CostPrice float64 `gorm:"not null" json:"cost_price"`
	SalePrice float64 `gorm:"not null" json:"sale_price"`
	Margin    float64 `gorm:"not null" json:"margin"`

	// --- 库存 ---
	Stock int `gorm:"default:0" json:"stock"`

	// --- 身份标识 ---
	SKU               string `gorm:"size:100;uniqueIndex" json:"sku"`
	MeliItemID        string `gorm:"size:100;uniqueIndex;default:null" json:"meli_item_id"` // 刊登成功后才有值
	SupplierID        int64  `gorm:"index" json:"supplier_id"`
	SupplierProductID string `gorm:"size:100" json:"supplier_product_id"`

	// --- 图片 (Postgres Array) ---
	ImageURLs pq.StringArray `gorm:"type:text[]" json:"image_urls"`

	// --- 状态 ---
	Status ProductStatus `gorm:"size:20;index;default:pending" json:"status"`

	// --- 关联 ---
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
