package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Meli     MeliConfig
	Supplier SupplierConfig
	Telegram TelegramConfig
	Task     TaskConfig
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string
	Port     string
	Debug    bool
	LogLevel string
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN string
}

// MeliConfig Mercado Livre 开放平台配置
type MeliConfig struct {
	ClientID     string
	ClientSecret string
	SiteID       string // 站点，如 MLB（巴西）

	// 业务参数
	ItemsPerDay int           // 每日目标刊登数
	MarginRate  float64       // 成本加成比例，0.3 即 30%
	RetryWait   time.Duration // 429 重试间隔
}

// SupplierConfig 供应商凭证
type SupplierConfig struct {
	CJEmail    string
	CJAPIKey   string
	SpocketKey string
}

// TelegramConfig 通知渠道配置
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// TaskConfig 定时任务配置
type TaskConfig struct {
	ListingCron     string        // 每日自动刊登
	ReportCron      string        // 每日报表
	MonitorInterval time.Duration // 挂单巡检间隔
}

// Load 加载配置：环境变量优先，其次可选的 config.yaml
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// 配置文件可缺省，全走环境变量
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Port:     v.GetString("server.port"),
			Debug:    v.GetBool("app.debug"),
			LogLevel: v.GetString("log.level"),
		},
		Database: DatabaseConfig{
			DSN: v.GetString("database.dsn"),
		},
		Meli: MeliConfig{
			ClientID:     v.GetString("meli.client.id"),
			ClientSecret: v.GetString("meli.client.secret"),
			SiteID:       v.GetString("meli.site.id"),
			ItemsPerDay:  v.GetInt("meli.items.per.day"),
			MarginRate:   v.GetFloat64("meli.margin.rate"),
			RetryWait:    v.GetDuration("meli.retry.wait"),
		},
		Supplier: SupplierConfig{
			CJEmail:    v.GetString("cj.email"),
			CJAPIKey:   v.GetString("cj.api.key"),
			SpocketKey: v.GetString("spocket.api.key"),
		},
		Telegram: TelegramConfig{
			BotToken: v.GetString("telegram.bot.token"),
			ChatID:   v.GetString("telegram.chat.id"),
		},
		Task: TaskConfig{
			ListingCron:     v.GetString("task.listing.cron"),
			ReportCron:      v.GetString("task.report.cron"),
			MonitorInterval: v.GetDuration("task.monitor.interval"),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "meli-autolist")
	v.SetDefault("app.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.dsn", "host=localhost user=meli password=meli dbname=meli_autolist port=5432 sslmode=disable")
	v.SetDefault("meli.site.id", "MLB")
	v.SetDefault("meli.items.per.day", 5)
	v.SetDefault("meli.margin.rate", 0.3)
	v.SetDefault("meli.retry.wait", time.Minute)
	// 每天 06:00 自动刊登，20:00 发报表
	v.SetDefault("task.listing.cron", "0 0 6 * * *")
	v.SetDefault("task.report.cron", "0 0 20 * * *")
	v.SetDefault("task.monitor.interval", 5*time.Minute)
}
