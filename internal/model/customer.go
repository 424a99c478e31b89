package model

// ==================== Customer 买家 ====================

// Customer 买家，来源于市场侧订单回调
type Customer struct {
	BaseModel
	MeliUserID string `gorm:"size:100;uniqueIndex" json:"meli_user_id"`
	Name       string `gorm:"size:255" json:"name"`
	Email      string `gorm:"size:255" json:"email"`
	Phone      string `gorm:"size:50" json:"phone"`

	Addresses []Address `gorm:"foreignKey:CustomerID" json:"addresses,omitempty"`
	Orders    []Order   `gorm:"foreignKey:CustomerID" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}

// ==================== Address 收货地址 ====================

// Address 买家收货地址
type Address struct {
	BaseModel
	CustomerID int64 `gorm:"index" json:"customer_id"`

	Street     string `gorm:"size:255;not null" json:"street"`
	Number     string `gorm:"size:20;not null" json:"number"`
	Complement string `gorm:"size:100" json:"complement"`
	District   string `gorm:"size:100;not null" json:"district"`
	City       string `gorm:"size:100;not null" json:"city"`
	State      string `gorm:"size:2;not null" json:"state"`
	ZipCode    string `gorm:"size:10;not null" json:"zip_code"`
	IsPrimary  bool   `gorm:"default:false" json:"is_primary"`
}

func (Address) TableName() string {
	return "addresses"
}
