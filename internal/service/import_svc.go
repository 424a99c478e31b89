package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/model"
	"meli_dev_v1_202601/internal/repository"
)

// ==================== 接口定义 ====================

// ImportService 商品 CSV 批量导入
type ImportService interface {
	// ImportProductsCSV 逐行导入，SKU 重复跳过，坏行记入结果不中断
	ImportProductsCSV(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// ImportResult 导入结果汇总
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// csv 表头顺序
// title,description,category,cost_price,sale_price,stock,sku,supplier_type,supplier_product_id,image_urls
const importColumns = 10

type importService struct {
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	marginRate   float64
	log          *zap.SugaredLogger
}

// NewImportService 创建导入服务
func NewImportService(
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	marginRate float64,
	log *zap.SugaredLogger,
) ImportService {
	return &importService{
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		marginRate:   marginRate,
		log:          log,
	}
}

// ==================== 导入实现 ====================

func (s *importService) ImportProductsCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < importColumns {
		return nil, fmt.Errorf("csv header has %d columns, want %d", len(header), importColumns)
	}

	result := &ImportResult{}
	// 同类型供应商一个文件内只查一次
	supplierCache := make(map[model.SupplierAPIType]*model.Supplier)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.importRow(ctx, record, supplierCache, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
		}
	}

	s.log.Infof("[Import] 导入完成: 成功=%d 跳过=%d 失败=%d", result.Imported, result.Skipped, len(result.Errors))
	return result, nil
}

func (s *importService) importRow(ctx context.Context, record []string, supplierCache map[model.SupplierAPIType]*model.Supplier, result *ImportResult) error {
	if len(record) < importColumns {
		return fmt.Errorf("want %d columns, got %d", importColumns, len(record))
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	title := record[0]
	if title == "" {
		return fmt.Errorf("empty title")
	}
	costPrice, err := strconv.ParseFloat(record[3], 64)
	if err != nil || costPrice <= 0 {
		return fmt.Errorf("invalid cost_price %q", record[3])
	}
	// 未给售价按配置毛利率推导
	salePrice := 0.0
	if record[4] != "" {
		if salePrice, err = strconv.ParseFloat(record[4], 64); err != nil || salePrice <= 0 {
			return fmt.Errorf("invalid sale_price %q", record[4])
		}
	} else {
		salePrice = costPrice * (1 + s.marginRate)
	}
	stock, err := strconv.Atoi(record[5])
	if err != nil || stock < 0 {
		return fmt.Errorf("invalid stock %q", record[5])
	}

	sku := record[6]
	if sku == "" {
		sku = uuid.NewString()
	} else {
		existing, err := s.productRepo.GetBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if existing != nil {
			s.log.Debugf("[Import] SKU 已存在，跳过: %s", sku)
			result.Skipped++
			return nil
		}
	}

	supplier, err := s.resolveSupplier(ctx, model.SupplierAPIType(record[7]), supplierCache)
	if err != nil {
		return err
	}

	var images []string
	if record[9] != "" {
		images = strings.Split(record[9], "|")
	}

	product := &model.Product{
		Title:             title,
		Description:       record[1],
		Category:          record[2],
		CostPrice:         costPrice,
		SalePrice:         salePrice,
		Margin:            salePrice/costPrice - 1,
		Stock:             stock,
		SKU:               sku,
		SupplierID:        supplier.ID,
		SupplierProductID: record[8],
		ImageURLs:         pq.StringArray(images),
		Status:            model.ProductStatusPending,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}
	result.Imported++
	return nil
}

// resolveSupplier 按类型找供应商，不存在则登记一条
func (s *importService) resolveSupplier(ctx context.Context, apiType model.SupplierAPIType, cache map[model.SupplierAPIType]*model.Supplier) (*model.Supplier, error) {
	if !apiType.Valid() {
		return nil, fmt.Errorf("unknown supplier_type %q", apiType)
	}
	if supplier, ok := cache[apiType]; ok {
		return supplier, nil
	}
	supplier, err := s.supplierRepo.GetByAPIType(ctx, apiType)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		supplier = &model.Supplier{
			Name:    string(apiType),
			APIType: apiType,
		}
		if err := s.supplierRepo.Create(ctx, supplier); err != nil {
			return nil, err
		}
	}
	cache[apiType] = supplier
	return supplier, nil
}
