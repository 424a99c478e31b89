package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"meli_dev_v1_202601/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, product *model.Product) error
	// GetByID / GetBySKU / GetByMeliItemID 未找到返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)
	GetByMeliItemID(ctx context.Context, meliItemID string) (*model.Product, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	// Delete 幂等删除，目标不存在时返回 found=false
	Delete(ctx context.Context, id int64) (found bool, err error)

	// 列表查询
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	ListByStatus(ctx context.Context, status model.ProductStatus, page, pageSize int) ([]model.Product, error)
	ListBySupplier(ctx context.Context, supplierID int64, page, pageSize int) ([]model.Product, error)
	Search(ctx context.Context, keyword string, page, pageSize int) ([]model.Product, error)

	// 统计
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.ProductStatus) (int64, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	Status     model.ProductStatus
	SupplierID int64
	Keyword    string
	Page       int
	PageSize   int
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByMeliItemID(ctx context.Context, meliItemID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Where("meli_item_id = ?", meliItemID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupplierID > 0 {
		query = query.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
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

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order("id ASC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

func (r *productRepo) ListByStatus(ctx context.Context, status model.ProductStatus, page, pageSize int) ([]model.Product, error) {
	products, _, err := r.List(ctx, ProductFilter{Status: status, Page: page, PageSize: pageSize})
	return products, err
}

func (r *productRepo) ListBySupplier(ctx context.Context, supplierID int64, page, pageSize int) ([]model.Product, error) {
	products, _, err := r.List(ctx, ProductFilter{SupplierID: supplierID, Page: page, PageSize: pageSize})
	return products, err
}

func (r *productRepo) Search(ctx context.Context, keyword string, page, pageSize int) ([]model.Product, error) {
	products, _, err := r.List(ctx, ProductFilter{Keyword: keyword, Page: page, PageSize: pageSize})
	return products, err
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&total).Error
	return total, err
}

func (r *productRepo) CountByStatus(ctx context.Context, status model.ProductStatus) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("status = ?", status).
		Count(&total).Error
	return total, err
}

func (r *productRepo) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("stock > 0 AND stock <= ?", threshold).
		Count(&total).Error
	return total, err
}
