package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/model"
)

// ==================== 下单参数校验 ====================

func TestCJOrderRequest_ValidateListsAllMissing(t *testing.T) {
	req := &CJOrderRequest{}
	err := req.Validate()
	require.Error(t, err)

	var missing *MissingParamError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, model.SupplierCJDropshipping, missing.Supplier)
	// 一次性报出全部缺项，不是报一个改一个
	assert.ElementsMatch(t, []string{"product_id", "quantity", "shipping_address"}, missing.Params)
}

func TestCJOrderRequest_ValidateOK(t *testing.T) {
	req := &CJOrderRequest{
		ProductID:       "pid-1",
		Quantity:        2,
		ShippingAddress: &ShippingAddress{City: "São Paulo"},
	}
	assert.NoError(t, req.Validate())
}

func TestSpocketOrderRequest_Validate(t *testing.T) {
	err := (&SpocketOrderRequest{Quantity: -1}).Validate()
	var missing *MissingParamError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, model.SupplierSpocket, missing.Supplier)
	assert.Contains(t, missing.Params, "variant_id")
	assert.Contains(t, missing.Params, "quantity")

	assert.NoError(t, (&SpocketOrderRequest{
		VariantID:       "v1",
		Quantity:        1,
		ShippingAddress: &ShippingAddress{},
	}).Validate())
}

// ==================== 网关类型匹配 ====================

func TestCJGateway_RejectsWrongRequestType(t *testing.T) {
	gw := NewCJGateway("a@b.c", "key", zap.NewNop().Sugar())
	_, err := gw.CreateOrder(context.Background(), &SpocketOrderRequest{
		VariantID: "v1", Quantity: 1, ShippingAddress: &ShippingAddress{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected request type")
}

func TestCJGateway_ValidatesBeforeNetwork(t *testing.T) {
	// 缺参必须在发起任何网络请求之前被拦下
	gw := NewCJGateway("a@b.c", "key", zap.NewNop().Sugar()).WithBaseURL("http://127.0.0.1:1")
	_, err := gw.CreateOrder(context.Background(), &CJOrderRequest{})
	var missing *MissingParamError
	require.ErrorAs(t, err, &missing)
}

// ==================== 注册表 ====================

func TestSupplierRegistry_Dispatch(t *testing.T) {
	registry := NewSupplierRegistry()
	assert.True(t, registry.Empty())

	cj := &fakeGateway{}
	registry.Register(model.SupplierCJDropshipping, cj)
	assert.False(t, registry.Empty())

	got, err := registry.Get(model.SupplierCJDropshipping)
	require.NoError(t, err)
	assert.Same(t, cj, got)
}

func TestSupplierRegistry_UnknownTypeIsConfigError(t *testing.T) {
	registry := NewSupplierRegistry()
	registry.Register(model.SupplierCJDropshipping, &fakeGateway{})

	_, err := registry.Get("aliexpress")
	require.Error(t, err, "未知类型属于配置错误，必须显式失败")

	_, err = registry.Get(model.SupplierSpocket)
	require.Error(t, err, "合法但未注册的类型同样失败")
}

func TestSupplierRegistry_PriorityFollowsRegistrationOrder(t *testing.T) {
	registry := NewSupplierRegistry()
	registry.Register(model.SupplierCJDropshipping, &fakeGateway{})
	registry.Register(model.SupplierSpocket, &fakeGateway{})
	// 重复注册不改变优先级
	registry.Register(model.SupplierCJDropshipping, &fakeGateway{})

	assert.Equal(t,
		[]model.SupplierAPIType{model.SupplierCJDropshipping, model.SupplierSpocket},
		registry.Priority())
}
