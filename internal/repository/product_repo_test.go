package repository

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meli_dev_v1_202601/internal/model"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Supplier{}, &model.Product{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func newProduct(sku string, status model.ProductStatus) *model.Product {
	return &model.Product{
		Title:     "Produto " + sku,
		CostPrice: 10,
		SalePrice: 13,
		Margin:    0.3,
		Stock:     20,
		SKU:       sku,
		Status:    status,
	}
}

func TestProductRepo_CreateAndGet(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := newProduct("SKU-1", model.ProductStatusActive)
	p.ImageURLs = []string{"https://img/1.jpg", "https://img/2.jpg"}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.ID == 0 {
		t.Error("ID 应该被自动分配")
	}

	got, err := repo.GetBySKU(ctx, "SKU-1")
	if err != nil {
		t.Fatalf("GetBySKU() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetBySKU() 应命中")
	}
	if len(got.ImageURLs) != 2 {
		t.Errorf("图片数组应完整往返, got %d", len(got.ImageURLs))
	}

	// 未找到返回 (nil, nil) 而不是错误
	missing, err := repo.GetBySKU(ctx, "no-such")
	if err != nil {
		t.Fatalf("GetBySKU(miss) error = %v", err)
	}
	if missing != nil {
		t.Error("未命中应返回 nil")
	}
}

func TestProductRepo_SKUUnique(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, newProduct("SAME", model.ProductStatusActive)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, newProduct("SAME", model.ProductStatusActive)); err == nil {
		t.Error("重复 SKU 应被唯一索引拒绝")
	}
}

func TestProductRepo_BlankMeliItemIDNotUnique(t *testing.T) {
	// 未刊登的商品 meli_item_id 为空，不能互相卡唯一索引
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, newProduct("A", model.ProductStatusPending)); err != nil {
		t.Fatalf("Create(A) error = %v", err)
	}
	if err := repo.Create(ctx, newProduct("B", model.ProductStatusPending)); err != nil {
		t.Errorf("第二个未刊登商品不应因空 meli_item_id 失败: %v", err)
	}
}

func TestProductRepo_ListFilterAndCount(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	for _, p := range []*model.Product{
		newProduct("a1", model.ProductStatusActive),
		newProduct("a2", model.ProductStatusActive),
		newProduct("p1", model.ProductStatusPending),
	} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	list, total, err := repo.List(ctx, ProductFilter{Status: model.ProductStatusActive})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("List(active) = %d/%d, want 2/2", len(list), total)
	}

	n, err := repo.CountByStatus(ctx, model.ProductStatusPending)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountByStatus(pending) = %d, want 1", n)
	}
}

func TestProductRepo_CountLowStock(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	low := newProduct("low", model.ProductStatusActive)
	low.Stock = 3
	zero := newProduct("zero", model.ProductStatusActive)
	zero.Stock = 0 // 无库存不算低库存，算售罄
	ok := newProduct("ok", model.ProductStatusActive)
	ok.Stock = 100

	for _, p := range []*model.Product{low, zero, ok} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	n, err := repo.CountLowStock(ctx, 5)
	if err != nil {
		t.Fatalf("CountLowStock() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountLowStock(5) = %d, want 1", n)
	}
}

func TestProductRepo_DeleteIdempotent(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := newProduct("del", model.ProductStatusActive)
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.Delete(ctx, p.ID)
	if err != nil || !found {
		t.Fatalf("Delete() = (%v, %v), want (true, nil)", found, err)
	}

	// 再删一次：无目标但不报错
	found, err = repo.Delete(ctx, p.ID)
	if err != nil {
		t.Fatalf("重复 Delete() error = %v", err)
	}
	if found {
		t.Error("目标已不存在, found 应为 false")
	}
}

func TestProductRepo_UpdateFields(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := newProduct("upd", model.ProductStatusPending)
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := repo.UpdateFields(ctx, p.ID, map[string]interface{}{
		"status": model.ProductStatusActive,
		"stock":  7,
	})
	if err != nil {
		t.Fatalf("UpdateFields() error = %v", err)
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID() = (%v, %v)", got, err)
	}
	if got.Status != model.ProductStatusActive || got.Stock != 7 {
		t.Errorf("更新未生效: status=%s stock=%d", got.Status, got.Stock)
	}
}
