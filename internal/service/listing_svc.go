package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/model"
	"meli_dev_v1_202601/internal/repository"
	"meli_dev_v1_202601/pkg/meli"
)

// ==================== 上架参数 ====================

const (
	// defaultCategoryID 巴西站默认类目
	defaultCategoryID = "MLB1051"
	// defaultCurrency 巴西雷亚尔
	defaultCurrency = "BRL"
	// freeShippingThreshold 售价高于该值包邮
	freeShippingThreshold = 150.0
	// trendOverFetchFactor 热词超量拉取倍数，部分热词搜不到可用货
	trendOverFetchFactor = 2
)

// MarketplaceClient 市场侧能力，上架流水线依赖的子集
type MarketplaceClient interface {
	GetTrends(ctx context.Context, limit int) []meli.Trend
	CreateItem(ctx context.Context, req *meli.ItemRequest) (*meli.Item, error)
	UpdateItem(ctx context.Context, itemID string, fields map[string]interface{}) (*meli.Item, error)
}

// ==================== 接口定义 ====================

// ListingService 自动选品上架服务
type ListingService interface {
	// CreateDailyListings 执行一轮选品上架，返回成功上架数
	CreateDailyListings(ctx context.Context) (int, error)
	// GetTrends 拉取当前热词（页面展示用）
	GetTrends(ctx context.Context, limit int) []meli.Trend
}

type listingService struct {
	meli         MarketplaceClient
	registry     *SupplierRegistry
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	itemsPerDay  int
	marginRate   float64
	log          *zap.SugaredLogger
}

// NewListingService 创建上架服务
func NewListingService(
	meliClient MarketplaceClient,
	registry *SupplierRegistry,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	itemsPerDay int,
	marginRate float64,
	log *zap.SugaredLogger,
) ListingService {
	return &listingService{
		meli:         meliClient,
		registry:     registry,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		itemsPerDay:  itemsPerDay,
		marginRate:   marginRate,
		log:          log,
	}
}

// ==================== 流水线主流程 ====================

func (s *listingService) CreateDailyListings(ctx context.Context) (int, error) {
	target := s.itemsPerDay
	if target <= 0 {
		target = 1
	}

	// 1. 拉取热词，超量拉取，留出搜不到货的余量
	trends := s.meli.GetTrends(ctx, target*trendOverFetchFactor)
	if len(trends) == 0 {
		s.log.Warn("[Listing] 未拉到任何热词，本轮结束")
		return 0, nil
	}

	// 2. 加载已登记的供应商，按类型建索引
	suppliers, err := s.supplierRepo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list suppliers: %w", err)
	}
	byType := make(map[model.SupplierAPIType]*model.Supplier, len(suppliers))
	for i := range suppliers {
		byType[suppliers[i].APIType] = &suppliers[i]
	}
	if len(byType) == 0 || s.registry.Empty() {
		s.log.Warn("[Listing] 没有可用供应商，本轮结束")
		return 0, nil
	}

	// 3. 逐热词尝试，单词首个成功即止，供应商按固定优先级兜底
	created := 0
	for _, trend := range trends {
		if created >= target {
			break
		}
		if err := ctx.Err(); err != nil {
			return created, err
		}
		if s.listForKeyword(ctx, trend.Keyword, byType) {
			created++
		}
	}

	s.log.Infof("[Listing] 本轮完成: 目标=%d 成功=%d 消耗热词=%d", target, created, len(trends))
	return created, nil
}

// listForKeyword 用一个热词走完整个供应商优先级链，返回是否成功上架
func (s *listingService) listForKeyword(ctx context.Context, keyword string, byType map[model.SupplierAPIType]*model.Supplier) bool {
	for _, apiType := range s.registry.Priority() {
		supplier, ok := byType[apiType]
		if !ok {
			continue
		}
		gw, err := s.registry.Get(apiType)
		if err != nil {
			s.log.Warnf("[Listing] 网关缺失: type=%s err=%v", apiType, err)
			continue
		}

		candidates, err := gw.SearchProducts(ctx, keyword, 1, 20)
		if err != nil {
			// 检索异常按空结果处理，不中断本轮
			s.log.Warnf("[Listing] 检索异常: supplier=%s keyword=%s err=%v", apiType, keyword, err)
			continue
		}
		best := selectBest(candidates)
		if best == nil {
			continue
		}

		if s.publishCandidate(ctx, keyword, supplier, best) {
			return true
		}
	}
	return false
}

// publishCandidate 计价、上架、落库
func (s *listingService) publishCandidate(ctx context.Context, keyword string, supplier *model.Supplier, c *CandidateProduct) bool {
	costPrice := c.Price
	if costPrice <= 0 {
		return false
	}
	salePrice := costPrice * (1 + s.marginRate)
	quantity := c.Stock
	if quantity > model.ListingStockCap {
		quantity = model.ListingStockCap
	}

	item, err := s.meli.CreateItem(ctx, buildItemRequest(c, salePrice, quantity))
	if err != nil || item == nil || item.ID == "" {
		s.log.Warnf("[Listing] 上架失败: supplier=%s keyword=%s err=%v", supplier.APIType, keyword, err)
		return false
	}

	sku := c.SKU
	if sku == "" {
		sku = uuid.NewString()
	}
	product := &model.Product{
		Title:             c.Name,
		Description:       c.Description,
		Category:          c.Category,
		CostPrice:         costPrice,
		SalePrice:         salePrice,
		Margin:            s.marginRate,
		Stock:             quantity,
		SKU:               sku,
		MeliItemID:        item.ID,
		SupplierID:        supplier.ID,
		SupplierProductID: c.SupplierProductID,
		ImageURLs:         pq.StringArray(c.ImageURLs),
		Status:            model.ProductStatusActive,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		// 远端已上架但落库失败，尽力下架避免遗留无主商品
		s.log.Errorf("[Listing] 落库失败: itemId=%s sku=%s err=%v", item.ID, sku, err)
		if _, pauseErr := s.meli.UpdateItem(ctx, item.ID, map[string]interface{}{"status": "paused"}); pauseErr != nil {
			s.log.Errorf("[Listing] 下架补偿失败: itemId=%s err=%v", item.ID, pauseErr)
		}
		return false
	}

	s.log.Infof("[Listing] 上架成功: keyword=%s supplier=%s itemId=%s 成本=%.2f 售价=%.2f",
		keyword, supplier.APIType, item.ID, costPrice, salePrice)
	return true
}

func (s *listingService) GetTrends(ctx context.Context, limit int) []meli.Trend {
	return s.meli.GetTrends(ctx, limit)
}

// ==================== 选品与报文 ====================

// selectBest 过滤无效候选后按评分取最优，全部无效返回 nil
// 评分 = 评价×0.6 + 库存×0.4，同分取先出现的
func selectBest(candidates []CandidateProduct) *CandidateProduct {
	var best *CandidateProduct
	var bestScore float64
	for i := range candidates {
		c := &candidates[i]
		if c.Price <= 0 || c.Stock <= 0 {
			continue
		}
		score := c.Rating*0.6 + float64(c.Stock)*0.4
		if best == nil || score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}

// buildItemRequest 组装上架报文，类目、币种、物流走站点默认值
func buildItemRequest(c *CandidateProduct, salePrice float64, quantity int) *meli.ItemRequest {
	req := &meli.ItemRequest{
		Title:             c.Name,
		CategoryID:        defaultCategoryID,
		Price:             salePrice,
		CurrencyID:        defaultCurrency,
		AvailableQuantity: quantity,
		BuyingMode:        "buy_it_now",
		Condition:         "new",
		ListingTypeID:     "gold_special",
	}
	req.Description.PlainText = c.Description
	for _, url := range c.ImageURLs {
		req.Pictures = append(req.Pictures, meli.Picture{Source: url})
	}
	req.Shipping.Mode = "me2"
	req.Shipping.LogisticType = "cross_docking"
	req.Shipping.LocalPickUp = false
	req.Shipping.FreeShipping = salePrice > freeShippingThreshold
	return req
}
