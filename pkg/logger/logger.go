package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once     sync.Once
	instance *zap.SugaredLogger
)

// Init 按配置初始化全局日志器，重复调用只生效一次
func Init(level string, debug bool) *zap.SugaredLogger {
	once.Do(func() {
		var cfg zap.Config
		if debug {
			cfg = zap.NewDevelopmentConfig()
		} else {
			cfg = zap.NewProductionConfig()
		}
		cfg.OutputPaths = []string{"stdout"}

		if lv, err := zapcore.ParseLevel(level); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lv)
		}

		l, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		instance = l.Sugar()
	})
	return instance
}

// L 获取全局日志器，未初始化时退回开发配置
func L() *zap.SugaredLogger {
	if instance == nil {
		return Init("debug", true)
	}
	return instance
}
