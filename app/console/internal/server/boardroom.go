package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/config"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/engine"
	brLogger "github.com/iWorld-y/boardroom/app/boardroom/pkg/logger"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/storage"
	"github.com/iWorld-y/boardroom/app/console/internal/conf"
)

// toConfig 将 internal/conf.Panel 转换为 pkg/config.Config，未填的字段取默认值
func toConfig(c *conf.Panel) *config.Config {
	cfg := &config.Config{}
	if c == nil {
		cfg.SetDefaults()
		return cfg
	}
	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{
			Provider: c.Llm.Provider,
			BaseURL:  c.Llm.BaseUrl,
			APIKey:   c.Llm.ApiKey,
			Model:    c.Llm.Model,
		}
	}
	if c.Data != nil {
		cfg.Data.ExcerptBudget = int(c.Data.ExcerptBudget)
	}
	if c.Meeting != nil {
		cfg.Panel.SummaryLimit = int(c.Meeting.SummaryLimit)
		if d, err := time.ParseDuration(c.Meeting.StepResetDelay); err == nil {
			cfg.Panel.StepResetDelay = d
		}
	}
	if c.Chart != nil {
		cfg.Chart = config.ChartConfig{Width: int(c.Chart.Width), Height: int(c.Chart.Height)}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{QPS: int(c.Concurrency.Qps), RPM: int(c.Concurrency.Rpm)}
	}
	if c.Db != nil {
		cfg.DB = config.DBConfig{
			Driver:   c.Db.Driver,
			Source:   c.Db.Source,
			Host:     c.Db.Host,
			Port:     int(c.Db.Port),
			User:     c.Db.User,
			Password: c.Db.Password,
			Name:     c.Db.Name,
		}
	}
	cfg.SetDefaults()
	return cfg
}

// NewBoardroomEngine 初始化高管会议引擎
func NewBoardroomEngine(c *conf.Panel, logger log.Logger) (*engine.Engine, func(), error) {
	helper := log.NewHelper(logger)
	cfg := toConfig(c)

	// 初始化日志
	if err := brLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		helper.Errorf("Failed to init boardroom logger: %v", err)
		_ = brLogger.InitLogger("info", "") // 降级处理
	}

	// 数据库可选，连接失败时只保留内存中的历史
	var store engine.Archiver
	closeStore := func() {}
	if cfg.DB.Enabled() {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			helper.Errorf("Failed to init storage for engine: %v", err)
		} else {
			store = s
			closeStore = func() { s.Close() }
		}
	}

	eng, err := engine.NewEngine(cfg, store)
	if err != nil {
		closeStore()
		helper.Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}

	cleanup := func() {
		helper.Info("Cleaning up boardroom engine")
		closeStore()
	}
	return eng, cleanup, nil
}
