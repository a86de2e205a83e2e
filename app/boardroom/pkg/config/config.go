package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	DefaultProvider       = "gemini"
	DefaultModel          = "gemini-3-pro-preview"
	DefaultExcerptBudget  = 15000
	DefaultSummaryLimit   = 300
	DefaultStepResetDelay = 2 * time.Second
	DefaultChartWidth     = 800
	DefaultChartHeight    = 400
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Data        DataConfig        `yaml:"data"`
	Panel       PanelConfig       `yaml:"panel"`
	Chart       ChartConfig       `yaml:"chart"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	DB          DBConfig          `yaml:"db"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini 或 openai
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// DataConfig 数据摘要配置
type DataConfig struct {
	ExcerptBudget int `yaml:"excerpt_budget"` // 数据摘要保留的前导字符数
}

// PanelConfig 高管会议流程配置
type PanelConfig struct {
	SummaryLimit   int           `yaml:"summary_limit"`    // 追问时写入脉络的 CEO 结论长度
	StepResetDelay time.Duration `yaml:"step_reset_delay"` // 进度条回到待命前的展示时间
}

// ChartConfig 图表尺寸
type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Driver   string `yaml:"driver"` // postgres 或 sqlite
	Source   string `yaml:"source"` // 完整 DSN，优先于下面的字段
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Enabled 是否配置了归档数据库
func (c DBConfig) Enabled() bool {
	return c.Source != "" || c.Host != ""
}

// DSN 返回驱动可用的连接串
func (c DBConfig) DSN() string {
	if c.Source != "" {
		return c.Source
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.SetDefaults()

	return &cfg, nil
}

// SetDefaults 为未设置的字段填充默认值
func (c *Config) SetDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.Data.ExcerptBudget <= 0 {
		c.Data.ExcerptBudget = DefaultExcerptBudget
	}
	if c.Panel.SummaryLimit <= 0 {
		c.Panel.SummaryLimit = DefaultSummaryLimit
	}
	if c.Panel.StepResetDelay <= 0 {
		c.Panel.StepResetDelay = DefaultStepResetDelay
	}
	if c.Chart.Width <= 0 {
		c.Chart.Width = DefaultChartWidth
	}
	if c.Chart.Height <= 0 {
		c.Chart.Height = DefaultChartHeight
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "postgres"
	}
}

// Default 返回全部使用默认值的配置
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}
