package service

import (
	"context"
	"fmt"
	"strings"

	"meli_dev_v1_202601/internal/model"
)

// ==================== 候选商品 ====================

// CandidateProduct 供应商侧检索到的候选商品，未落库
type CandidateProduct struct {
	Name              string
	Description       string
	Category          string
	Price             float64 // 供货成本价
	Stock             int
	Rating            float64 // 0~5
	SKU               string
	ImageURLs         []string
	SupplierProductID string
}

// OrderConfirmation 供应商下单回执
type OrderConfirmation struct {
	SupplierOrderID string
	Status          string
	TrackingCode    string
}

// ==================== 下单请求（按供应商分型） ====================

// SupplierOrderRequest 供应商下单请求，各实现自带参数校验
type SupplierOrderRequest interface {
	// Validate 校验必填参数，缺参返回 *MissingParamError
	Validate() error
	// APIType 请求面向的供应商类型
	APIType() model.SupplierAPIType
}

// MissingParamError 下单参数缺失，一次性列出全部缺项
type MissingParamError struct {
	Supplier model.SupplierAPIType
	Params   []string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("supplier %s: missing required params: %s",
		e.Supplier, strings.Join(e.Params, ", "))
}

// ShippingAddress 收货地址，下单时透传给供应商
type ShippingAddress struct {
	Name     string `json:"name"`
	Street   string `json:"street"`
	Number   string `json:"number"`
	District string `json:"district"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

// CJOrderRequest CJ Dropshipping 下单请求
type CJOrderRequest struct {
	ProductID       string
	Quantity        int
	ShippingAddress *ShippingAddress
}

func (r *CJOrderRequest) APIType() model.SupplierAPIType { return model.SupplierCJDropshipping }

func (r *CJOrderRequest) Validate() error {
	var missing []string
	if r.ProductID == "" {
		missing = append(missing, "product_id")
	}
	if r.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if r.ShippingAddress == nil {
		missing = append(missing, "shipping_address")
	}
	if len(missing) > 0 {
		return &MissingParamError{Supplier: r.APIType(), Params: missing}
	}
	return nil
}

// SpocketOrderRequest Spocket 下单请求
type SpocketOrderRequest struct {
	VariantID       string
	Quantity        int
	ShippingAddress *ShippingAddress
}

func (r *SpocketOrderRequest) APIType() model.SupplierAPIType { return model.SupplierSpocket }

func (r *SpocketOrderRequest) Validate() error {
	var missing []string
	if r.VariantID == "" {
		missing = append(missing, "variant_id")
	}
	if r.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if r.ShippingAddress == nil {
		missing = append(missing, "shipping_address")
	}
	if len(missing) > 0 {
		return &MissingParamError{Supplier: r.APIType(), Params: missing}
	}
	return nil
}

// ==================== 网关接口 ====================

// SupplierGateway 供应商网关，屏蔽各家 API 差异
type SupplierGateway interface {
	// SearchProducts 按关键词检索候选品，检索失败视为软失败，返回空列表并记日志
	SearchProducts(ctx context.Context, keyword string, page, pageSize int) ([]CandidateProduct, error)
	// CreateOrder 向供应商下采购单，请求类型须与网关匹配
	CreateOrder(ctx context.Context, req SupplierOrderRequest) (*OrderConfirmation, error)
}

// ==================== 网关注册表 ====================

// SupplierRegistry 供应商网关注册表，注册后只读，按类型分发
type SupplierRegistry struct {
	gateways map[model.SupplierAPIType]SupplierGateway
	priority []model.SupplierAPIType
}

// NewSupplierRegistry 创建空注册表
func NewSupplierRegistry() *SupplierRegistry {
	return &SupplierRegistry{
		gateways: make(map[model.SupplierAPIType]SupplierGateway),
	}
}

// Register 注册网关，注册顺序即选品兜底优先级
func (s *SupplierRegistry) Register(apiType model.SupplierAPIType, gw SupplierGateway) {
	if _, ok := s.gateways[apiType]; !ok {
		s.priority = append(s.priority, apiType)
	}
	s.gateways[apiType] = gw
}

// Get 按类型取网关，未注册的类型属配置错误
func (s *SupplierRegistry) Get(apiType model.SupplierAPIType) (SupplierGateway, error) {
	if !apiType.Valid() {
		return nil, fmt.Errorf("unknown supplier api type: %q", apiType)
	}
	gw, ok := s.gateways[apiType]
	if !ok {
		return nil, fmt.Errorf("supplier %s not configured", apiType)
	}
	return gw, nil
}

// Priority 返回注册顺序的供应商类型列表
func (s *SupplierRegistry) Priority() []model.SupplierAPIType {
	out := make([]model.SupplierAPIType, len(s.priority))
	copy(out, s.priority)
	return out
}

// Empty 是否没有任何可用供应商
func (s *SupplierRegistry) Empty() bool {
	return len(s.gateways) == 0
}
