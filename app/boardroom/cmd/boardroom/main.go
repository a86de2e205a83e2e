package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/config"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/engine"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/logger"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/storage"
)

var (
	configPath string
	apiKey     string
	modelID    string
	dataPath   string
)

var rootCmd = &cobra.Command{
	Use:   "boardroom",
	Short: "AI 高管会议：CFO、COO、CEO 依次分析数据并给出决策",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return logger.InitLogger(cfg.Log.Level, cfg.Log.File)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "覆盖配置中的 API Key")
	rootCmd.PersistentFlags().StringVar(&modelID, "model", "", "覆盖配置中的模型")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "数据文件 (CSV/TXT/HTML)")

	rootCmd.AddCommand(analyzeCmd, chatCmd)
}

var loadedConfig *config.Config

// loadConfig 配置文件不存在时使用默认值
func loadConfig() (*config.Config, error) {
	if loadedConfig != nil {
		return loadedConfig, nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("无法加载配置文件: %w", err)
		}
		cfg = config.Default()
	}
	if v := os.Getenv("BOARDROOM_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	loadedConfig = cfg
	return cfg, nil
}

// newEngine 创建引擎并载入数据文件，返回的 cleanup 关闭数据库
func newEngine() (*engine.Engine, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var store engine.Archiver
	if cfg.DB.Enabled() {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 会议记录将不会归档。", err)
		} else {
			store = s
			cleanup = func() { s.Close() }
			logger.Log.Info("已成功连接到数据库")
		}
	}

	e, err := engine.NewEngine(cfg, store)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	e.SetCredentials(apiKey, modelID)

	if dataPath != "" {
		f, err := os.Open(dataPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("无法打开数据文件: %w", err)
		}
		defer f.Close()
		if _, err := e.LoadData(f.Name(), f); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return e, cleanup, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
