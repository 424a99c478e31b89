package meli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.mercadolibre.com"

// Config 客户端参数
type Config struct {
	BaseURL   string
	SiteID    string        // 站点，如 MLB
	Timeout   time.Duration // 单次请求超时
	RetryWait time.Duration // 429 重试间隔，默认 60s
}

// Client Mercado Livre 开放平台客户端
// 统一处理：限流重试 (429 最多 3 次尝试)、401 透明刷新重试一次
type Client struct {
	http   *resty.Client
	tokens TokenProvider
	siteID string
	log    *zap.SugaredLogger
}

func NewClient(cfg *Config, tokens TokenProvider, log *zap.SugaredLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SiteID == "" {
		cfg.SiteID = "MLB"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.RetryWait == 0 {
		cfg.RetryWait = time.Minute
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "Meli-Go-App/1.0").
		// 限流策略：共 3 次尝试，固定间隔
		SetRetryCount(2).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r != nil && r.StatusCode() == 429
		})

	return &Client{
		http:   httpClient,
		tokens: tokens,
		siteID: cfg.SiteID,
		log:    log,
	}
}

// ==================== 趋势 ====================

// GetTrends 获取热搜词快照
// 软失败：任何错误都回退为空列表，只留日志；401 会先透明刷新重试一次
func (c *Client) GetTrends(ctx context.Context, limit int) []Trend {
	var trends []Trend
	if err := c.do(ctx, resty.MethodGet, "/trends/"+c.siteID, nil, nil, &trends); err != nil {
		c.log.Warnf("获取趋势失败: %v", err)
		return nil
	}
	if limit > 0 && len(trends) > limit {
		trends = trends[:limit]
	}
	return trends
}

// ==================== 刊登 ====================

// CreateItem 创建刊登
func (c *Client) CreateItem(ctx context.Context, item *ItemRequest) (*Item, error) {
	var result Item
	if err := c.do(ctx, resty.MethodPost, "/items", nil, item, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateItem 更新刊登字段 (状态、价格、库存等)
func (c *Client) UpdateItem(ctx context.Context, itemID string, fields map[string]interface{}) (*Item, error) {
	var result Item
	if err := c.do(ctx, resty.MethodPut, "/items/"+itemID, nil, fields, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetItem 获取刊登详情
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	var result Item
	if err := c.do(ctx, resty.MethodGet, "/items/"+itemID, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ==================== 订单 / 物流 ====================

// GetOrders 按状态搜索订单
func (c *Client) GetOrders(ctx context.Context, status string, limit, offset int) (*OrderSearchResponse, error) {
	var result OrderSearchResponse
	query := map[string]string{
		"order.status": status,
		"limit":        strconv.Itoa(limit),
		"offset":       strconv.Itoa(offset),
	}
	if err := c.do(ctx, resty.MethodGet, "/orders/search", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOrder 获取订单详情
func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	var result OrderResponse
	if err := c.do(ctx, resty.MethodGet, "/orders/"+orderID, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetShipment 获取发货单详情
func (c *Client) GetShipment(ctx context.Context, shipmentID string) (*Shipment, error) {
	var result Shipment
	if err := c.do(ctx, resty.MethodGet, "/shipments/"+shipmentID, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ==================== 请求核心 ====================

// do 带鉴权发送请求
// 401 时刷新一次令牌并原样重试；刷新失败或二次 401 返回 ErrUnauthorized
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, result interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("meli: acquire token: %w", err)
	}

	resp, err := c.execute(ctx, method, path, query, body, result, token)
	if err != nil {
		return fmt.Errorf("meli: %s %s: %w", method, path, err)
	}

	if resp.StatusCode() == 401 {
		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			return ErrUnauthorized
		}
		resp, err = c.execute(ctx, method, path, query, body, result, token)
		if err != nil {
			return fmt.Errorf("meli: %s %s (retry): %w", method, path, err)
		}
		if resp.StatusCode() == 401 {
			return ErrUnauthorized
		}
	}

	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}

func (c *Client) execute(ctx context.Context, method, path string, query map[string]string, body, result interface{}, token string) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token)
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	return req.Execute(method, path)
}
