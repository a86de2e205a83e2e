package factory

import (
	"fmt"
	"net/http"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/config"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/gateway"
)

// NewGateway 根据配置创建模型网关
func NewGateway(cfg *config.Config) (gateway.Gateway, error) {
	switch cfg.LLM.Provider {
	case "", "gemini":
		return gateway.NewGeminiGateway(cfg.LLM.BaseURL, http.DefaultClient), nil
	case "openai":
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("openai base url is missing")
		}
		return gateway.NewOpenAIGateway(cfg.LLM.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}
