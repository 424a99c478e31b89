package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 触发限流器 ====================

// TriggerLimiter 手动触发限流器
// 防止用户频繁触发刊登/报表等耗时任务，把 ML API 配额打穿
type TriggerLimiter struct {
	locks sync.Map // key -> *lockEntry
}

type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

var globalLimiter = &TriggerLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *TriggerLimiter {
	return globalLimiter
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时同时更新最后执行时间
// key: 限流键，如 "listing:auto"
// interval: 冷却间隔
func (r *TriggerLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置限流（测试/管理用）
func (r *TriggerLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== gin 中间件 ====================

// TriggerRateLimit 手动触发限流中间件
//
// 使用示例:
//
//	router.POST("/api/listings/auto",
//	    middleware.TriggerRateLimit("listing:auto", 10*time.Minute),
//	    listingCtl.RunAuto,
//	)
func TriggerRateLimit(key string, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := GetLimiter().Check(key, interval)
		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data": gin.H{
					"retry_after": int(result.RetryAfter.Seconds()),
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())

	if seconds < 60 {
		return fmt.Sprintf("任务冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return fmt.Sprintf("任务冷却中，请 %d 分钟后重试", minutes)
	}

	return fmt.Sprintf("任务冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
