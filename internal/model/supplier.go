package model

// ==================== 供应商 API 类型 ====================

// SupplierAPIType 供应商对接类型，决定走哪个网关实现
type SupplierAPIType string

const (
	SupplierCJDropshipping SupplierAPIType = "cj_dropshipping"
	SupplierSpocket        SupplierAPIType = "spocket"
)

// Valid 判断是否为受支持的对接类型
func (t SupplierAPIType) Valid() bool {
	switch t {
	case SupplierCJDropshipping, SupplierSpocket:
		return true
	}
	return false
}

// ==================== Supplier 供应商 ====================

// Supplier 货源供应商
// 删除供应商不会级联删除其商品，商品保留弱引用
type Supplier struct {
	BaseModel
	Name    string          `gorm:"size:100;not null" json:"name"`
	APIType SupplierAPIType `gorm:"size:50;not null;index" json:"api_type"`

	Products []Product `gorm:"foreignKey:SupplierID" json:"-"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
