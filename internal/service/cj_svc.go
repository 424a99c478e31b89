package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const cjBaseURL = "https://developers.cjdropshipping.com/api2.0/v1"

// ==================== CJ Dropshipping 网关 ====================

// CJGateway CJ Dropshipping 供应商网关
type CJGateway struct {
	http   *resty.Client
	email  string
	apiKey string
	log    *zap.SugaredLogger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewCJGateway 创建 CJ 网关
func NewCJGateway(email, apiKey string, log *zap.SugaredLogger) *CJGateway {
	client := resty.New().
		SetBaseURL(cjBaseURL).
		SetTimeout(30 * time.Second)
	return &CJGateway{
		http:   client,
		email:  email,
		apiKey: apiKey,
		log:    log,
	}
}

// WithBaseURL 覆盖接口地址（测试用）
func (g *CJGateway) WithBaseURL(baseURL string) *CJGateway {
	g.http.SetBaseURL(baseURL)
	return g
}

// ==================== 应答结构 ====================

type cjEnvelope struct {
	Result  bool   `json:"result"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type cjTokenResponse struct {
	cjEnvelope
	Data struct {
		AccessToken       string `json:"accessToken"`
		AccessTokenExpiry string `json:"accessTokenExpiryDate"`
	} `json:"data"`
}

type cjProduct struct {
	PID           string  `json:"pid"`
	ProductNameEn string  `json:"productNameEn"`
	SellPrice     float64 `json:"sellPrice"`
	CategoryName  string  `json:"categoryName"`
	ProductSKU    string  `json:"productSku"`
	ProductImage  string  `json:"productImage"`
	ProductWeight float64 `json:"productWeight"`
	ListedNum     int     `json:"listedNum"`
	Stock         int     `json:"stock"`
	Score         float64 `json:"score"`
	Description   string  `json:"description"`
}

type cjSearchResponse struct {
	cjEnvelope
	Data struct {
		PageNum  int         `json:"pageNum"`
		PageSize int         `json:"pageSize"`
		Total    int         `json:"total"`
		List     []cjProduct `json:"list"`
	} `json:"data"`
}

type cjOrderResponse struct {
	cjEnvelope
	Data struct {
		OrderID     string `json:"orderId"`
		OrderStatus string `json:"orderStatus"`
	} `json:"data"`
}

// ==================== 鉴权 ====================

// token 获取访问令牌，过期前 5 分钟视为失效
func (g *CJGateway) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.accessToken != "" && time.Until(g.expiresAt) > 5*time.Minute {
		return g.accessToken, nil
	}

	var out cjTokenResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"email":    g.email,
			"password": g.apiKey,
		}).
		SetResult(&out).
		Post("/authentication/getAccessToken")
	if err != nil {
		return "", fmt.Errorf("cj auth: %w", err)
	}
	if resp.IsError() || !out.Result {
		return "", fmt.Errorf("cj auth failed: code=%d msg=%s", out.Code, out.Message)
	}

	g.accessToken = out.Data.AccessToken
	expiry, err := time.Parse(time.RFC3339, out.Data.AccessTokenExpiry)
	if err != nil {
		// 接口未给出有效期时按 1 天处理
		expiry = time.Now().Add(24 * time.Hour)
	}
	g.expiresAt = expiry
	return g.accessToken, nil
}

// ==================== 网关实现 ====================

// SearchProducts 按关键词检索商品，失败只记日志返回空列表
func (g *CJGateway) SearchProducts(ctx context.Context, keyword string, page, pageSize int) ([]CandidateProduct, error) {
	tok, err := g.token(ctx)
	if err != nil {
		g.log.Warnf("[CJ] 获取令牌失败: %v", err)
		return nil, nil
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var out cjSearchResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetHeader("CJ-Access-Token", tok).
		SetQueryParams(map[string]string{
			"productNameEn": keyword,
			"pageNum":       fmt.Sprintf("%d", page),
			"pageSize":      fmt.Sprintf("%d", pageSize),
		}).
		SetResult(&out).
		Get("/product/list")
	if err != nil {
		g.log.Warnf("[CJ] 检索失败: keyword=%s err=%v", keyword, err)
		return nil, nil
	}
	if resp.IsError() || !out.Result {
		g.log.Warnf("[CJ] 检索返回异常: keyword=%s status=%d code=%d msg=%s",
			keyword, resp.StatusCode(), out.Code, out.Message)
		return nil, nil
	}

	candidates := make([]CandidateProduct, 0, len(out.Data.List))
	for _, p := range out.Data.List {
		var images []string
		if p.ProductImage != "" {
			images = []string{p.ProductImage}
		}
		candidates = append(candidates, CandidateProduct{
			Name:              p.ProductNameEn,
			Description:       p.Description,
			Category:          p.CategoryName,
			Price:             p.SellPrice,
			Stock:             p.Stock,
			Rating:            p.Score,
			SKU:               p.ProductSKU,
			ImageURLs:         images,
			SupplierProductID: p.PID,
		})
	}
	return candidates, nil
}

// CreateOrder 向 CJ 下采购单，缺参直接报错不出网
func (g *CJGateway) CreateOrder(ctx context.Context, req SupplierOrderRequest) (*OrderConfirmation, error) {
	cjReq, ok := req.(*CJOrderRequest)
	if !ok {
		return nil, fmt.Errorf("cj gateway: unexpected request type for supplier %s", req.APIType())
	}
	if err := cjReq.Validate(); err != nil {
		return nil, err
	}

	tok, err := g.token(ctx)
	if err != nil {
		return nil, err
	}

	addr := cjReq.ShippingAddress
	var out cjOrderResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetHeader("CJ-Access-Token", tok).
		SetBody(map[string]interface{}{
			"products": []map[string]interface{}{
				{"pid": cjReq.ProductID, "quantity": cjReq.Quantity},
			},
			"shippingCustomerName": addr.Name,
			"shippingAddress":      addr.Street + " " + addr.Number,
			"shippingCity":         addr.City,
			"shippingProvince":     addr.State,
			"shippingZip":          addr.ZipCode,
			"shippingCountryCode":  addr.Country,
			"shippingPhone":        addr.Phone,
		}).
		SetResult(&out).
		Post("/shopping/order/createOrder")
	if err != nil {
		return nil, fmt.Errorf("cj create order: %w", err)
	}
	if resp.IsError() || !out.Result {
		return nil, fmt.Errorf("cj create order failed: code=%d msg=%s", out.Code, out.Message)
	}

	g.log.Infof("[CJ] 下单成功: orderId=%s status=%s", out.Data.OrderID, out.Data.OrderStatus)
	return &OrderConfirmation{
		SupplierOrderID: out.Data.OrderID,
		Status:          out.Data.OrderStatus,
	}, nil
}

var _ SupplierGateway = (*CJGateway)(nil)
