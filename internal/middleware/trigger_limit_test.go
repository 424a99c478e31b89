package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestTriggerLimiter_Check(t *testing.T) {
	limiter := &TriggerLimiter{}

	// 首次放行
	if got := limiter.Check("listing:auto", time.Minute); !got.Allowed {
		t.Fatal("首次触发应放行")
	}

	// 冷却期内拒绝，并给出剩余时间
	got := limiter.Check("listing:auto", time.Minute)
	if got.Allowed {
		t.Fatal("冷却期内应拒绝")
	}
	if got.RetryAfter <= 0 || got.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v, 应在 (0, 1m] 区间", got.RetryAfter)
	}

	// 不同 key 互不影响
	if got := limiter.Check("report:daily", time.Minute); !got.Allowed {
		t.Error("不同 key 应各自限流")
	}

	// Reset 后恢复
	limiter.Reset("listing:auto")
	if got := limiter.Check("listing:auto", time.Minute); !got.Allowed {
		t.Error("Reset 后应重新放行")
	}
}

func TestTriggerRateLimit_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	defer GetLimiter().Reset("test:mw")

	r := gin.New()
	r.POST("/trigger", TriggerRateLimit("test:mw", time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "/trigger", nil))
	if w1.Code != http.StatusOK {
		t.Fatalf("首次触发 status = %d, want 200", w1.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/trigger", nil))
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("冷却期内 status = %d, want 429", w2.Code)
	}
}
