package model

import (
	"time"

	"gorm.io/datatypes"
)

// 报表类型
const (
	ReportTypeDaily   = "daily"
	ReportTypeWeekly  = "weekly"
	ReportTypeMonthly = "monthly"
)

// Report 运营报表存档
type Report struct {
	BaseModel
	Type        string    `gorm:"size:50;not null;index" json:"type"`
	PeriodStart time.Time `gorm:"not null" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null" json:"period_end"`

	TotalOrders int64   `gorm:"default:0" json:"total_orders"`
	TotalSales  float64 `gorm:"default:0" json:"total_sales"`
	TotalProfit float64 `gorm:"default:0" json:"total_profit"`

	// 明细数据 (JSONB)
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload"`
}

func (Report) TableName() string {
	return "reports"
}
