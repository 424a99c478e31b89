package meli

import (
	"errors"
	"fmt"
)

// ErrUnauthorized 刷新 Token 后依然未授权
var ErrUnauthorized = errors.New("meli: unauthorized")

// APIError 接口返回非 2xx 时携带上游状态码和响应体
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("meli: api error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsRateLimited 判断是否为限流导致的失败（重试耗尽后）
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 429
}
