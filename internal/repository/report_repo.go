package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"meli_dev_v1_202601/internal/model"
)

// ==================== 接口定义 ====================

// ReportRepository 报表仓储接口
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	// GetLatest 取指定类型最近一份报表，未找到返回 (nil, nil)
	GetLatest(ctx context.Context, reportType string) (*model.Report, error)
	List(ctx context.Context, reportType string, page, pageSize int) ([]model.Report, int64, error)
}

// ==================== 仓储实现 ====================

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepository 创建报表仓储
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepo) GetLatest(ctx context.Context, reportType string) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).
		Where("type = ?", reportType).
		Order("period_end DESC").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) List(ctx context.Context, reportType string, page, pageSize int) ([]model.Report, int64, error) {
	var reports []model.Report
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Report{})
	if reportType != "" {
		query = query.Where("type = ?", reportType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	err := query.
		Order("period_end DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&reports).Error

	return reports, total, err
}
