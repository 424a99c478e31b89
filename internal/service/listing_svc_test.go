package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meli_dev_v1_202601/internal/model"
	"meli_dev_v1_202601/internal/repository"
	"meli_dev_v1_202601/pkg/meli"
)

// ==================== 测试辅助 ====================

// fakeMarket 市场客户端假件，记录所有调用
type fakeMarket struct {
	trends     []meli.Trend
	createErr  error
	nextItemID int
	created    []*meli.ItemRequest
	paused     []string
}

func (f *fakeMarket) GetTrends(ctx context.Context, limit int) []meli.Trend {
	if limit > 0 && len(f.trends) > limit {
		return f.trends[:limit]
	}
	return f.trends
}

func (f *fakeMarket) CreateItem(ctx context.Context, req *meli.ItemRequest) (*meli.Item, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	f.nextItemID++
	return &meli.Item{
		ID:     fmt.Sprintf("MLB%04d", f.nextItemID),
		Title:  req.Title,
		Price:  req.Price,
		Status: "active",
	}, nil
}

func (f *fakeMarket) UpdateItem(ctx context.Context, itemID string, fields map[string]interface{}) (*meli.Item, error) {
	f.paused = append(f.paused, itemID)
	return &meli.Item{ID: itemID, Status: "paused"}, nil
}

// fakeGateway 供应商网关假件，按关键词回放候选
type fakeGateway struct {
	byKeyword map[string][]CandidateProduct
	searchErr error
	searched  []string
}

func (f *fakeGateway) SearchProducts(ctx context.Context, keyword string, page, pageSize int) ([]CandidateProduct, error) {
	f.searched = append(f.searched, keyword)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.byKeyword[keyword], nil
}

func (f *fakeGateway) CreateOrder(ctx context.Context, req SupplierOrderRequest) (*OrderConfirmation, error) {
	return nil, errors.New("not used in listing tests")
}

func setupListingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")
	require.NoError(t, db.AutoMigrate(&model.Supplier{}, &model.Product{}), "数据库迁移失败")
	return db
}

type listingFixture struct {
	db       *gorm.DB
	market   *fakeMarket
	registry *SupplierRegistry
	products repository.ProductRepository
	svc      ListingService
}

func newListingFixture(t *testing.T, market *fakeMarket, target int, seedSuppliers ...model.SupplierAPIType) *listingFixture {
	db := setupListingTestDB(t)
	supplierRepo := repository.NewSupplierRepository(db)
	productRepo := repository.NewProductRepository(db)

	for _, apiType := range seedSuppliers {
		require.NoError(t, supplierRepo.Create(context.Background(), &model.Supplier{
			Name:    string(apiType),
			APIType: apiType,
		}))
	}

	registry := NewSupplierRegistry()
	svc := NewListingService(market, registry, supplierRepo, productRepo, target, 0.3, zap.NewNop().Sugar())
	return &listingFixture{
		db:       db,
		market:   market,
		registry: registry,
		products: productRepo,
		svc:      svc,
	}
}

func trendsOf(keywords ...string) []meli.Trend {
	out := make([]meli.Trend, 0, len(keywords))
	for i, kw := range keywords {
		out = append(out, meli.Trend{Keyword: kw, Position: i + 1})
	}
	return out
}

// ==================== 选品算法 ====================

func TestSelectBest_EmptyAndAllInvalid(t *testing.T) {
	assert.Nil(t, selectBest(nil))
	assert.Nil(t, selectBest([]CandidateProduct{}))

	// 全部无效：价格或库存非正
	assert.Nil(t, selectBest([]CandidateProduct{
		{Name: "a", Price: 0, Stock: 10, Rating: 5},
		{Name: "b", Price: -3, Stock: 10, Rating: 5},
		{Name: "c", Price: 9.9, Stock: 0, Rating: 5},
		{Name: "d", Price: 9.9, Stock: -2, Rating: 5},
	}))
}

func TestSelectBest_MaxScore(t *testing.T) {
	candidates := []CandidateProduct{
		{Name: "low", Price: 10, Stock: 5, Rating: 3.0},   // 3*0.6 + 5*0.4 = 3.8
		{Name: "high", Price: 10, Stock: 30, Rating: 4.5}, // 4.5*0.6 + 30*0.4 = 14.7
		{Name: "mid", Price: 10, Stock: 20, Rating: 4.0},  // 4*0.6 + 20*0.4 = 10.4
		{Name: "junk", Price: 0, Stock: 999, Rating: 5.0}, // 被过滤
		{Name: "empty", Price: 10, Stock: 0, Rating: 5.0}, // 被过滤
	}
	best := selectBest(candidates)
	require.NotNil(t, best)
	assert.Equal(t, "high", best.Name)
}

func TestSelectBest_TieKeepsEarliest(t *testing.T) {
	// 同分：取供应商返回顺序里靠前的
	candidates := []CandidateProduct{
		{Name: "first", Price: 10, Stock: 10, Rating: 4.0},
		{Name: "second", Price: 99, Stock: 10, Rating: 4.0},
	}
	best := selectBest(candidates)
	require.NotNil(t, best)
	assert.Equal(t, "first", best.Name)
}

// ==================== 定价与报文 ====================

func TestBuildItemRequest_PricingAndShipping(t *testing.T) {
	c := &CandidateProduct{
		Name:        "Capa de celular",
		Description: "Capa resistente",
		ImageURLs:   []string{"https://img.example/1.jpg"},
	}

	req := buildItemRequest(c, 65.0, 20)
	assert.Equal(t, "Capa de celular", req.Title)
	assert.Equal(t, "MLB1051", req.CategoryID)
	assert.Equal(t, "BRL", req.CurrencyID)
	assert.Equal(t, 20, req.AvailableQuantity)
	assert.Equal(t, "buy_it_now", req.BuyingMode)
	assert.Equal(t, "new", req.Condition)
	assert.Equal(t, "gold_special", req.ListingTypeID)
	assert.Equal(t, "me2", req.Shipping.Mode)
	assert.Equal(t, "cross_docking", req.Shipping.LogisticType)
	assert.False(t, req.Shipping.LocalPickUp)
	require.Len(t, req.Pictures, 1)
	assert.Equal(t, "https://img.example/1.jpg", req.Pictures[0].Source)
}

func TestBuildItemRequest_FreeShippingBoundary(t *testing.T) {
	c := &CandidateProduct{Name: "x"}

	// 刚好 150 不包邮，严格大于才包邮
	assert.False(t, buildItemRequest(c, 150.0, 1).Shipping.FreeShipping)
	assert.True(t, buildItemRequest(c, 150.01, 1).Shipping.FreeShipping)
	assert.False(t, buildItemRequest(c, 149.99, 1).Shipping.FreeShipping)
}

// ==================== 流水线端到端 ====================

func TestPipeline_NoTrends(t *testing.T) {
	market := &fakeMarket{}
	fx := newListingFixture(t, market, 5, model.SupplierCJDropshipping)
	fx.registry.Register(model.SupplierCJDropshipping, &fakeGateway{})

	count, err := fx.svc.CreateDailyListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, market.created, "没有热词不应有任何刊登调用")

	total, err := fx.products.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPipeline_NoSuppliers(t *testing.T) {
	market := &fakeMarket{trends: trendsOf("capa iphone")}
	fx := newListingFixture(t, market, 5) // 不登记供应商

	count, err := fx.svc.CreateDailyListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, market.created)
}

func TestPipeline_SingleCandidateSuccess(t *testing.T) {
	market := &fakeMarket{trends: trendsOf("capa iphone")}
	fx := newListingFixture(t, market, 1, model.SupplierCJDropshipping)
	fx.registry.Register(model.SupplierCJDropshipping, &fakeGateway{
		byKeyword: map[string][]CandidateProduct{
			"capa iphone": {{
				Name: "Capa iPhone 15", Price: 50, Stock: 20, Rating: 4.0,
				SKU: "CJ-SKU-1", SupplierProductID: "pid-1",
			}},
		},
	})

	count, err := fx.svc.CreateDailyListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	product, err := fx.products.GetBySKU(context.Background(), "CJ-SKU-1")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.InDelta(t, 50.0, product.CostPrice, 1e-9)
	assert.InDelta(t, 65.0, product.SalePrice, 1e-9) // 50 * 1.3
	assert.Equal(t, 20, product.Stock)
	assert.Equal(t, model.ProductStatusActive, product.Status)
	assert.NotEmpty(t, product.MeliItemID)

	require.Len(t, market.created, 1)
	assert.Equal(t, 20, market.created[0].AvailableQuantity)
}

func TestPipeline_StockCappedAtFifty(t *testing.T) {
	market := &fakeMarket{trends: trendsOf("fone bluetooth")}
	fx := newListingFixture(t, market, 1, model.SupplierCJDropshipping)
	fx.registry.Register(model.SupplierCJDropshipping, &fakeGateway{
		byKeyword: map[string][]CandidateProduct{
			"fone bluetooth": {{Name: "Fone", Price: 30, Stock: 800, Rating: 4.8, SKU: "s"}},
		},
	})

	count, err := fx.svc.CreateDailyListings(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// 供应商报多少都封顶 50，刊登量和商品库存一致
	require.Len(t, market.created, 1)
	assert.Equal(t, 50, market.created[0].AvailableQuantity)

	product, err := fx.products.GetBySKU(context.Background(), "s")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, 50, product.Stock)
}

func TestPipeline_ConsumesKeywordsUntilExhausted(t *testing.T) {
	// 目标 3，前两个词搜不到货，后两个成功 -> 共 2 个
	market := &fakeMarket{trends: trendsOf("kw1", "kw2", "kw3", "kw4")}
	fx := newListingFixture(t, market, 3, model.SupplierCJDropshipping)
	gw := &fakeGateway{
		byKeyword: map[string][]CandidateProduct{
			"kw3": {{Name: "p3", Price: 10, Stock: 5, Rating: 4, SKU: "sku3"}},
			"kw4": {{Name: "p4", Price: 12, Stock: 5, Rating: 4, SKU: "sku4"}},
		},
	}
	fx.registry.Register(model.SupplierCJDropshipping, gw)

	count, err := fx.svc.CreateDailyListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"kw1", "kw2", "kw3", "kw4"}, gw.searched, "4 个热词都应被消耗")
}

func TestPipeline_SearchErrorFallsThroughToNextSupplier(t *testing.T) {
	market := &fakeMarket{trends: trendsOf("smartwatch")}
	fx := newListingFixture(t, market, 1, model.SupplierCJDropshipping, model.SupplierSpocket)

	// CJ 报错，Spocket 兜底
	fx.registry.Register(model.SupplierCJDropshipping, &fakeGateway{searchErr: errors.New("transport down")})
	fx.registry.Register(model.SupplierSpocket, &fakeGateway{
		byKeyword: map[string][]CandidateProduct{
			"smartwatch": {{Name: "Smartwatch", Price: 80, Stock: 10, Rating: 4.2, SKU: "sp-1"}},
		},
	})

	count, err := fx.svc.CreateDailyListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count, "单个供应商故障不应中断本轮")
}

func TestPipeline_FirstSupplierSuccessWins(t *testing.T) {
	market := &fakeMarket{trends: trendsOf("capa iphone")}
	fx := newListingFixture(t, market, 1, model.SupplierCJDropshipping, model.SupplierSpocket)

	spocket := &fakeGateway{
		byKeyword: map[string][]CandidateProduct{
			"capa iphone": {{Name: "não deve aparecer", Price: 1, Stock: 1, Rating: 1, SKU: "x"}},
		},
	}
	fx.registry.Register(model.SupplierCJDropshipping, &fakeGateway{
		byKeyword: map[string][]CandidateProduct{
			"capa iphone": {{Name: "CJ候选", Price: 40, Stock: 9, Rating: 4.5, SKU: "cj-1"}},
		},
	})
	fx.registry.Register(model.SupplierSpocket, spocket)

	count, err := fx.svc.CreateDailyListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Empty(t, spocket.searched, "首个供应商成功后不应再问第二家")
}

func TestPipeline_PersistFailurePausesRemoteListing(t *testing.T) {
	market := &fakeMarket{trends: trendsOf("capa iphone")}
	fx := newListingFixture(t, market, 1, model.SupplierCJDropshipping)
	fx.registry.Register(model.SupplierCJDropshipping, &fakeGateway{
		byKeyword: map[string][]CandidateProduct{
			"capa iphone": {{Name: "dup", Price: 10, Stock: 3, Rating: 4, SKU: "DUP-SKU"}},
		},
	})

	// 预埋同 SKU 商品，触发唯一索引冲突
	require.NoError(t, fx.products.Create(context.Background(), &model.Product{
		Title: "existing", CostPrice: 1, SalePrice: 2, SKU: "DUP-SKU",
		Status: model.ProductStatusActive,
	}))

	count, err := fx.svc.CreateDailyListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	require.Len(t, market.created, 1, "刊登调用已发生")
	assert.Len(t, market.paused, 1, "落库失败应触发下架补偿")
}
