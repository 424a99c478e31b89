package controller

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/model"
)

// fakeOrderService 只记录 webhook 调用
type fakeOrderService struct {
	got chan [2]string
}

func (f *fakeOrderService) ProcessWebhook(ctx context.Context, topic, resource string) error {
	f.got <- [2]string{topic, resource}
	return nil
}

func (f *fakeOrderService) SyncOrder(ctx context.Context, meliOrderID string) (*model.Order, error) {
	return nil, nil
}

func (f *fakeOrderService) FulfillOrder(ctx context.Context, orderID int64) error {
	return nil
}

func setupWebhookRouter(svc *fakeOrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctl := NewWebhookController(svc, zap.NewNop().Sugar())
	r.POST("/api/v1/webhooks/orders", ctl.OrderNotification)
	return r
}

func TestWebhook_AcceptsAndProcessesInBackground(t *testing.T) {
	svc := &fakeOrderService{got: make(chan [2]string, 1)}
	r := setupWebhookRouter(svc)

	body := []byte(`{"topic":"orders_v2","resource":"/orders/2001","user_id":1,"attempts":1}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// 必须立即 200，处理在后台
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	select {
	case got := <-svc.got:
		if got[0] != "orders_v2" || got[1] != "/orders/2001" {
			t.Errorf("透传参数不对: %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("后台处理未被触发")
	}
}

func TestWebhook_RejectsMalformedBody(t *testing.T) {
	svc := &fakeOrderService{got: make(chan [2]string, 1)}
	r := setupWebhookRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/orders", bytes.NewReader([]byte(`{"topic":"orders_v2"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("缺 resource 字段 status = %d, want 400", w.Code)
	}
	select {
	case <-svc.got:
		t.Fatal("坏报文不应进入处理")
	case <-time.After(100 * time.Millisecond):
	}
}
