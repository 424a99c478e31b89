package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meli_dev_v1_202601/internal/model"
	"meli_dev_v1_202601/internal/repository"
	"meli_dev_v1_202601/internal/service"
)

type ProductController struct {
	productRepo repository.ProductRepository
	importSvc   service.ImportService
	log         *zap.SugaredLogger
}

func NewProductController(productRepo repository.ProductRepository, importSvc service.ImportService, log *zap.SugaredLogger) *ProductController {
	return &ProductController{productRepo: productRepo, importSvc: importSvc, log: log}
}

// productListReq 商品列表查询参数
type productListReq struct {
	Status   string `form:"status"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// GetProductList 商品列表
// @Summary 获取商品列表
// @Description 分页查询本地商品，支持状态、关键词筛选
// @Tags Product (商品模块)
// @Produce json
// @Param status query string false "状态筛选"
// @Param keyword query string false "标题关键词"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{} "商品列表"
// @Router /api/v1/products [get]
func (ctrl *ProductController) GetProductList(c *gin.Context) {
	var req productListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	products, total, err := ctrl.productRepo.List(c.Request.Context(), repository.ProductFilter{
		Status:   model.ProductStatus(req.Status),
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"page":  req.Page,
		"list":  products,
	})
}

// ImportProducts CSV 批量导入
// @Summary 导入商品 CSV
// @Description 上传 CSV 文件批量建品，SKU 重复自动跳过
// @Tags Product (商品模块)
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV 文件"
// @Success 200 {object} service.ImportResult "导入结果"
// @Failure 400 {object} map[string]string "文件缺失/表头错误"
// @Router /api/v1/products/import [post]
func (ctrl *ProductController) ImportProducts(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少上传文件 file"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "文件打开失败: " + err.Error()})
		return
	}
	defer f.Close()

	result, err := ctrl.importSvc.ImportProductsCSV(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "导入失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
