package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"meli_dev_v1_202601/internal/model"
)

// ==================== 接口定义 ====================

// SupplierRepository 供应商仓储接口
type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	// GetByID 按主键查询，未找到返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*model.Supplier, error)
	// GetByAPIType 按对接类型查询，未找到返回 (nil, nil)
	GetByAPIType(ctx context.Context, apiType model.SupplierAPIType) (*model.Supplier, error)
	ListAll(ctx context.Context) ([]model.Supplier, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	// Delete 幂等删除，目标不存在时返回 found=false
	Delete(ctx context.Context, id int64) (found bool, err error)
}

// ==================== 仓储实现 ====================

type supplierRepo struct {
	db *gorm.DB
}

// NewSupplierRepository 创建供应商仓储
func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db: db}
}

func (r *supplierRepo) Create(ctx context.Context, supplier *model.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *supplierRepo) GetByID(ctx context.Context, id int64) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.db.WithContext(ctx).First(&supplier, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) GetByAPIType(ctx context.Context, apiType model.SupplierAPIType) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.db.WithContext(ctx).Where("api_type = ?", apiType).First(&supplier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) ListAll(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.WithContext(ctx).Order("id ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Supplier{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *supplierRepo) Delete(ctx context.Context, id int64) (bool, error) {
	// 不级联商品：商品保留对供应商的弱引用
	res := r.db.WithContext(ctx).Delete(&model.Supplier{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
