package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const spocketBaseURL = "https://api.spocket.co/api/v1"

// ==================== Spocket 网关 ====================

// SpocketGateway Spocket 供应商网关，Bearer 鉴权
type SpocketGateway struct {
	http *resty.Client
	log  *zap.SugaredLogger
}

// NewSpocketGateway 创建 Spocket 网关
func NewSpocketGateway(apiKey string, log *zap.SugaredLogger) *SpocketGateway {
	client := resty.New().
		SetBaseURL(spocketBaseURL).
		SetTimeout(30 * time.Second).
		SetAuthToken(apiKey)
	return &SpocketGateway{http: client, log: log}
}

// WithBaseURL 覆盖接口地址（测试用）
func (g *SpocketGateway) WithBaseURL(baseURL string) *SpocketGateway {
	g.http.SetBaseURL(baseURL)
	return g
}

// ==================== 应答结构 ====================

type spocketProduct struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	CostPrice   float64  `json:"cost_price"`
	Inventory   int      `json:"inventory"`
	Rating      float64  `json:"rating"`
	SKU         string   `json:"sku"`
	Images      []string `json:"images"`
}

type spocketSearchResponse struct {
	Products []spocketProduct `json:"products"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
}

type spocketOrderResponse struct {
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`
	TrackingCode string `json:"tracking_code"`
}

// ==================== 网关实现 ====================

// SearchProducts 按关键词检索商品，失败只记日志返回空列表
func (g *SpocketGateway) SearchProducts(ctx context.Context, keyword string, page, pageSize int) ([]CandidateProduct, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var out spocketSearchResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search":   keyword,
			"page":     fmt.Sprintf("%d", page),
			"per_page": fmt.Sprintf("%d", pageSize),
		}).
		SetResult(&out).
		Get("/products/search")
	if err != nil {
		g.log.Warnf("[Spocket] 检索失败: keyword=%s err=%v", keyword, err)
		return nil, nil
	}
	if resp.IsError() {
		g.log.Warnf("[Spocket] 检索返回异常: keyword=%s status=%d", keyword, resp.StatusCode())
		return nil, nil
	}

	candidates := make([]CandidateProduct, 0, len(out.Products))
	for _, p := range out.Products {
		candidates = append(candidates, CandidateProduct{
			Name:              p.Title,
			Description:       p.Description,
			Category:          p.Category,
			Price:             p.CostPrice,
			Stock:             p.Inventory,
			Rating:            p.Rating,
			SKU:               p.SKU,
			ImageURLs:         p.Images,
			SupplierProductID: p.ID,
		})
	}
	return candidates, nil
}

// CreateOrder 向 Spocket 下采购单，缺参直接报错不出网
func (g *SpocketGateway) CreateOrder(ctx context.Context, req SupplierOrderRequest) (*OrderConfirmation, error) {
	spReq, ok := req.(*SpocketOrderRequest)
	if !ok {
		return nil, fmt.Errorf("spocket gateway: unexpected request type for supplier %s", req.APIType())
	}
	if err := spReq.Validate(); err != nil {
		return nil, err
	}

	addr := spReq.ShippingAddress
	var out spocketOrderResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"variant_id": spReq.VariantID,
			"quantity":   spReq.Quantity,
			"shipping_address": map[string]string{
				"name":     addr.Name,
				"address1": addr.Street + " " + addr.Number,
				"city":     addr.City,
				"province": addr.State,
				"zip":      addr.ZipCode,
				"country":  addr.Country,
				"phone":    addr.Phone,
			},
		}).
		SetResult(&out).
		Post("/orders")
	if err != nil {
		return nil, fmt.Errorf("spocket create order: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("spocket create order failed: status=%d body=%s",
			resp.StatusCode(), resp.String())
	}

	g.log.Infof("[Spocket] 下单成功: orderId=%s status=%s", out.OrderID, out.Status)
	return &OrderConfirmation{
		SupplierOrderID: out.OrderID,
		Status:          out.Status,
		TrackingCode:    out.TrackingCode,
	}, nil
}

var _ SupplierGateway = (*SpocketGateway)(nil)
