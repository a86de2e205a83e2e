package gateway

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/logger"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/prompt"
)

// OpenAIGateway 调用 OpenAI 兼容接口
type OpenAIGateway struct {
	baseURL  string
	newModel func(ctx context.Context, cfg *openai.ChatModelConfig) (model.BaseChatModel, error)
}

// NewOpenAIGateway 创建 OpenAI 兼容网关
func NewOpenAIGateway(baseURL string) *OpenAIGateway {
	return &OpenAIGateway{
		baseURL: baseURL,
		newModel: func(ctx context.Context, cfg *openai.ChatModelConfig) (model.BaseChatModel, error) {
			cm, err := openai.NewChatModel(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return cm, nil
		},
	}
}

var _ Gateway = (*OpenAIGateway)(nil)

// Call 整段提示词作为一条用户消息发送
func (g *OpenAIGateway) Call(ctx context.Context, req Request) (string, error) {
	if req.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	chatModel, err := g.newModel(ctx, &openai.ChatModelConfig{
		BaseURL: g.baseURL,
		APIKey:  req.APIKey,
		Model:   req.Model,
	})
	if err != nil {
		return "", fmt.Errorf("LLM 初始化失败: %w", err)
	}

	payload := prompt.Compose(req.RolePrompt, req.DataExcerpt, req.Question)
	logger.Log.Debugf("调用 OpenAI 兼容接口 [%s]，请求 %d 字", req.Model, len([]rune(payload)))

	resp, err := chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(payload),
	})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return NoResponse, nil
	}
	return resp.Content, nil
}
