package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"meli_dev_v1_202601/internal/model"
)

// ==================== 接口定义 ====================

// CustomerRepository 买家仓储接口
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	// GetByID / GetByMeliUserID 未找到返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	GetByMeliUserID(ctx context.Context, meliUserID string) (*model.Customer, error)
	ListAll(ctx context.Context, page, pageSize int) ([]model.Customer, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) (found bool, err error)

	// 地址
	AddAddress(ctx context.Context, customerID int64, address *model.Address) error
	GetAddresses(ctx context.Context, customerID int64) ([]model.Address, error)
	// GetPrimaryAddress 未找到返回 (nil, nil)
	GetPrimaryAddress(ctx context.Context, customerID int64) (*model.Address, error)
}

// ==================== 仓储实现 ====================

type customerRepo struct {
	db *gorm.DB
}

// NewCustomerRepository 创建买家仓储
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepo) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) GetByMeliUserID(ctx context.Context, meliUserID string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).Where("meli_user_id = ?", meliUserID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) ListAll(ctx context.Context, page, pageSize int) ([]model.Customer, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	var customers []model.Customer
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&customers).Error
	return customers, err
}

func (r *customerRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *customerRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Customer{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *customerRepo) AddAddress(ctx context.Context, customerID int64, address *model.Address) error {
	address.CustomerID = customerID
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *customerRepo) GetAddresses(ctx context.Context, customerID int64) ([]model.Address, error) {
	var addresses []model.Address
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Find(&addresses).Error
	return addresses, err
}

func (r *customerRepo) GetPrimaryAddress(ctx context.Context, customerID int64) (*model.Address, error) {
	var address model.Address
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND is_primary = ?", customerID, true).
		First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}
