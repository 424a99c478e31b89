package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"meli_dev_v1_202601/internal/model"
	"meli_dev_v1_202601/internal/repository"
	"meli_dev_v1_202601/pkg/meli"
)

// OrderAPI 市场侧订单查询能力
type OrderAPI interface {
	GetOrder(ctx context.Context, orderID string) (*meli.OrderResponse, error)
	GetShipment(ctx context.Context, shipmentID string) (*meli.Shipment, error)
}

// ==================== 接口定义 ====================

// OrderService 订单服务：webhook 进单、采购履约
type OrderService interface {
	// ProcessWebhook 处理市场侧订单通知，幂等
	ProcessWebhook(ctx context.Context, topic, resource string) error
	// SyncOrder 按市场订单号拉取并落库（已存在则更新状态）
	SyncOrder(ctx context.Context, meliOrderID string) (*model.Order, error)
	// FulfillOrder 把本地订单转成供应商采购单
	FulfillOrder(ctx context.Context, orderID int64) error
}

type orderService struct {
	api          OrderAPI
	registry     *SupplierRegistry
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	log          *zap.SugaredLogger
}

// NewOrderService 创建订单服务
func NewOrderService(
	api OrderAPI,
	registry *SupplierRegistry,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	log *zap.SugaredLogger,
) OrderService {
	return &orderService{
		api:          api,
		registry:     registry,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		log:          log,
	}
}

// ==================== webhook 进单 ====================

func (s *orderService) ProcessWebhook(ctx context.Context, topic, resource string) error {
	// 只关心订单类通知，其它主题直接确认
	if topic != "orders" && topic != "orders_v2" {
		s.log.Debugf("[Order] 忽略通知: topic=%s resource=%s", topic, resource)
		return nil
	}
	orderID := strings.TrimPrefix(resource, "/orders/")
	if orderID == "" || strings.Contains(orderID, "/") {
		return fmt.Errorf("invalid order resource: %q", resource)
	}
	_, err := s.SyncOrder(ctx, orderID)
	return err
}

func (s *orderService) SyncOrder(ctx context.Context, meliOrderID string) (*model.Order, error) {
	remote, err := s.api.GetOrder(ctx, meliOrderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", meliOrderID, err)
	}

	status := mapOrderStatus(remote.Status)

	// 已存在只更新状态与时点
	existing, err := s.orderRepo.GetByMeliOrderID(ctx, meliOrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		fields := map[string]interface{}{"status": status}
		now := time.Now()
		switch status {
		case model.OrderStatusPaid:
			if existing.PaidAt == nil {
				fields["paid_at"] = now
			}
		case model.OrderStatusShipped:
			if existing.ShippedAt == nil {
				fields["shipped_at"] = now
			}
		case model.OrderStatusDelivered:
			if existing.DeliveredAt == nil {
				fields["delivered_at"] = now
			}
		}
		if err := s.orderRepo.UpdateFields(ctx, existing.ID, fields); err != nil {
			return nil, err
		}
		existing.Status = status
		return existing, nil
	}

	customer, err := s.upsertCustomer(ctx, &remote.Buyer)
	if err != nil {
		return nil, err
	}

	var addressID int64
	if remote.Shipping.ID > 0 {
		if id, addrErr := s.syncDeliveryAddress(ctx, customer.ID, remote.Shipping.ID); addrErr != nil {
			// 地址拉取失败不阻塞进单
			s.log.Warnf("[Order] 收货地址同步失败: order=%s err=%v", meliOrderID, addrErr)
		} else {
			addressID = id
		}
	}

	order, err := s.buildOrder(ctx, remote, customer.ID, addressID, status)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order %s: %w", meliOrderID, err)
	}
	s.log.Infof("[Order] 进单成功: meliOrderId=%s 金额=%.2f 状态=%s", meliOrderID, order.TotalValue, status)
	return order, nil
}

func (s *orderService) upsertCustomer(ctx context.Context, buyer *meli.OrderBuyer) (*model.Customer, error) {
	meliUserID := fmt.Sprintf("%d", buyer.ID)
	customer, err := s.customerRepo.GetByMeliUserID(ctx, meliUserID)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		return customer, nil
	}
	name := strings.TrimSpace(buyer.FirstName + " " + buyer.LastName)
	if name == "" {
		name = buyer.Nickname
	}
	customer = &model.Customer{
		MeliUserID: meliUserID,
		Name:       name,
		Email:      buyer.Email,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *orderService) syncDeliveryAddress(ctx context.Context, customerID, shipmentID int64) (int64, error) {
	shipment, err := s.api.GetShipment(ctx, fmt.Sprintf("%d", shipmentID))
	if err != nil {
		return 0, err
	}
	recv := shipment.ReceiverAddress
	addr := &model.Address{
		Street:     recv.StreetName,
		Number:     recv.StreetNumber,
		Complement: recv.Comment,
		District:   recv.Neighborhood.Name,
		City:       recv.City.Name,
		State:      strings.TrimPrefix(recv.State.ID, "BR-"),
		ZipCode:    recv.ZipCode,
		IsPrimary:  true,
	}
	if err := s.customerRepo.AddAddress(ctx, customerID, addr); err != nil {
		return 0, err
	}
	return addr.ID, nil
}

func (s *orderService) buildOrder(ctx context.Context, remote *meli.OrderResponse, customerID, addressID int64, status model.OrderStatus) (*model.Order, error) {
	orderedAt := time.Now()
	if t, err := time.Parse(time.RFC3339, remote.DateCreated); err == nil {
		orderedAt = t
	}

	var productsValue float64
	items := make([]model.OrderItem, 0, len(remote.OrderItems))
	for _, entry := range remote.OrderItems {
		productsValue += entry.UnitPrice * float64(entry.Quantity)
		item := model.OrderItem{
			Quantity:  entry.Quantity,
			UnitPrice: entry.UnitPrice,
		}
		// 本地商品对不上也收单，仅缺商品关联
		product, err := s.productRepo.GetByMeliItemID(ctx, entry.Item.ID)
		if err != nil {
			return nil, err
		}
		if product != nil {
			item.ProductID = product.ID
		} else {
			s.log.Warnf("[Order] 订单项未匹配到本地商品: itemId=%s", entry.Item.ID)
		}
		items = append(items, item)
	}

	shippingValue := remote.Shipping.Cost
	raw, _ := json.Marshal(remote)

	order := &model.Order{
		MeliOrderID:       fmt.Sprintf("%d", remote.ID),
		CustomerID:        customerID,
		DeliveryAddressID: addressID,
		ProductsValue:     productsValue,
		ShippingValue:     shippingValue,
		TotalValue:        productsValue + shippingValue,
		Status:            status,
		OrderedAt:         orderedAt,
		RawData:           datatypes.JSON(raw),
		Items:             items,
	}
	if status == model.OrderStatusPaid {
		now := time.Now()
		order.PaidAt = &now
	}
	return order, nil
}

// mapOrderStatus 市场侧状态归一到本地状态
func mapOrderStatus(remote string) model.OrderStatus {
	switch remote {
	case "paid":
		return model.OrderStatusPaid
	case "shipped":
		return model.OrderStatusShipped
	case "delivered":
		return model.OrderStatusDelivered
	case "cancelled":
		return model.OrderStatusCancelled
	default:
		return model.OrderStatusPending
	}
}

// ==================== 采购履约 ====================

func (s *orderService) FulfillOrder(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("order %d not found", orderID)
	}
	if order.Status != model.OrderStatusPaid {
		return fmt.Errorf("order %d not paid yet (status=%s)", orderID, order.Status)
	}

	addr, err := s.shippingAddress(ctx, order)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		if item.ProductID == 0 {
			s.log.Warnf("[Order] 订单项无本地商品，跳过采购: order=%d", orderID)
			continue
		}
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			continue
		}
		supplier, err := s.supplierRepo.GetByID(ctx, product.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			return fmt.Errorf("product %d has no supplier", product.ID)
		}

		gw, err := s.registry.Get(supplier.APIType)
		if err != nil {
			return err
		}
		req, err := buildSupplierOrderRequest(supplier.APIType, product, item.Quantity, addr)
		if err != nil {
			return err
		}
		confirm, err := gw.CreateOrder(ctx, req)
		if err != nil {
			return fmt.Errorf("supplier order (order=%d product=%d): %w", orderID, product.ID, err)
		}
		s.log.Infof("[Order] 采购单已创建: order=%d supplier=%s supplierOrderId=%s",
			orderID, supplier.APIType, confirm.SupplierOrderID)
		if confirm.TrackingCode != "" && order.TrackingCode == "" {
			if err := s.orderRepo.UpdateFields(ctx, orderID, map[string]interface{}{
				"tracking_code": confirm.TrackingCode,
			}); err != nil {
				return err
			}
			order.TrackingCode = confirm.TrackingCode
		}
	}
	return nil
}

func (s *orderService) shippingAddress(ctx context.Context, order *model.Order) (*ShippingAddress, error) {
	customer, err := s.customerRepo.GetByID(ctx, order.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("order %d has no customer", order.ID)
	}
	addr, err := s.customerRepo.GetPrimaryAddress(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	if addr == nil {
		return nil, fmt.Errorf("customer %d has no delivery address", customer.ID)
	}
	return &ShippingAddress{
		Name:     customer.Name,
		Street:   addr.Street,
		Number:   addr.Number,
		District: addr.District,
		City:     addr.City,
		State:    addr.State,
		ZipCode:  addr.ZipCode,
		Country:  "BR",
		Phone:    customer.Phone,
	}, nil
}

// buildSupplierOrderRequest 按供应商类型组装采购请求
func buildSupplierOrderRequest(apiType model.SupplierAPIType, product *model.Product, quantity int, addr *ShippingAddress) (SupplierOrderRequest, error) {
	switch apiType {
	case model.SupplierCJDropshipping:
		return &CJOrderRequest{
			ProductID:       product.SupplierProductID,
			Quantity:        quantity,
			ShippingAddress: addr,
		}, nil
	case model.SupplierSpocket:
		return &SpocketOrderRequest{
			VariantID:       product.SupplierProductID,
			Quantity:        quantity,
			ShippingAddress: addr,
		}, nil
	default:
		return nil, fmt.Errorf("unknown supplier api type: %q", apiType)
	}
}
