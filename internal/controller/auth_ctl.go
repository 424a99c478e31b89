package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meli_dev_v1_202601/pkg/config"
	"meli_dev_v1_202601/pkg/utils"
)

const meliAuthURL = "https://auth.mercadolivre.com.br/authorization"

type AuthController struct {
	cfg *config.MeliConfig
	log *zap.SugaredLogger
}

func NewAuthController(cfg *config.MeliConfig, log *zap.SugaredLogger) *AuthController {
	return &AuthController{cfg: cfg, log: log}
}

// Login 生成授权链接
// @Summary 获取 ML 授权链接
// @Description 生成带 state 的授权跳转链接，复制到浏览器手动完成授权
// @Tags Auth (授权模块)
// @Produce json
// @Param redirect_uri query string true "回调地址"
// @Success 200 {object} map[string]string "授权链接"
// @Router /api/v1/auth/login [get]
func (ctrl *AuthController) Login(c *gin.Context) {
	redirectURI := c.Query("redirect_uri")
	if redirectURI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "redirect_uri 为空"})
		return
	}

	state, err := utils.GenerateRandomString(32)
	if err != nil {
		ctrl.log.Errorf("[Auth] 生成 state 失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "state 生成失败"})
		return
	}
	utils.SetCache(state, redirectURI)

	url := fmt.Sprintf("%s?response_type=code&client_id=%s&redirect_uri=%s&state=%s",
		meliAuthURL, ctrl.cfg.ClientID, redirectURI, state)
	c.JSON(http.StatusOK, gin.H{
		"message":  "获取成功",
		"auth_url": url,
	})
}

// Callback 授权回调
// @Summary ML 授权回调
// @Description 校验 state 并确认收到授权码，授权码由运维侧换取 Token
// @Tags Auth (授权模块)
// @Produce json
// @Param code query string true "授权码"
// @Param state query string true "安全校验码"
// @Success 200 {object} map[string]string "授权成功"
// @Failure 400 {object} map[string]string "拒绝授权/state 失效"
// @Router /api/v1/auth/callback [get]
func (ctrl *AuthController) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	errParam := c.Query("error")

	if errParam != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "用户拒绝了授权", "meli_msg": errParam})
		return
	}
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少必要参数 code 或 state"})
		return
	}

	if _, ok := utils.GetCache(state); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state 无效或已过期，请重新发起授权"})
		return
	}
	// 用完即焚，防重放
	utils.DeleteCache(state)

	ctrl.log.Infof("[Auth] 收到授权码: code=%s…", code[:min(8, len(code))])
	c.JSON(http.StatusOK, gin.H{
		"message": "授权成功，授权码已记录",
	})
}
