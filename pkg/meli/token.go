package meli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// TokenProvider 访问令牌提供者
// 把令牌缓存从客户端状态里拆出来，刷新逻辑可单独替换、单独测试
type TokenProvider interface {
	// Token 返回当前可用令牌，缓存为空时触发一次刷新
	Token(ctx context.Context) (string, error)
	// Refresh 强制换取新令牌并更新缓存
	Refresh(ctx context.Context) (string, error)
}

// ==================== client_credentials 实现 ====================

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ClientCredentials 应用级令牌（client_credentials 授权）
type ClientCredentials struct {
	clientID     string
	clientSecret string
	tokenURL     string
	http         *resty.Client

	mu    sync.Mutex
	token string
}

func NewClientCredentials(baseURL, clientID, clientSecret string) *ClientCredentials {
	return &ClientCredentials{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     baseURL + "/oauth/token",
		http:         resty.New().SetTimeout(20 * time.Second),
	}
}

func (p *ClientCredentials) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	cached := p.token
	p.mu.Unlock()

	if cached != "" {
		return cached, nil
	}
	return p.Refresh(ctx)
}

func (p *ClientCredentials) Refresh(ctx context.Context) (string, error) {
	var result tokenResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     p.clientID,
			"client_secret": p.clientSecret,
		}).
		SetResult(&result).
		Post(p.tokenURL)
	if err != nil {
		return "", fmt.Errorf("meli: token request: %w", err)
	}
	if resp.IsError() || result.AccessToken == "" {
		return "", fmt.Errorf("meli: token exchange refused: status=%d %w", resp.StatusCode(), ErrUnauthorized)
	}

	p.mu.Lock()
	p.token = result.AccessToken
	p.mu.Unlock()

	return result.AccessToken, nil
}
