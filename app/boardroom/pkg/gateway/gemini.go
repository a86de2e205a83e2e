package gateway

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/logger"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/prompt"
)

// GeminiGateway 调用 Gemini generateContent
type GeminiGateway struct {
	baseURL    string
	httpClient *http.Client
}

// NewGeminiGateway 创建 Gemini 网关，baseURL 为空时使用官方地址
func NewGeminiGateway(baseURL string, httpClient *http.Client) *GeminiGateway {
	return &GeminiGateway{baseURL: baseURL, httpClient: httpClient}
}

var _ Gateway = (*GeminiGateway)(nil)

// Call API Key 与模型可在运行时修改，所以每次调用都新建客户端
func (g *GeminiGateway) Call(ctx context.Context, req Request) (string, error) {
	if req.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      req.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	payload := prompt.Compose(req.RolePrompt, req.DataExcerpt, req.Question)
	logger.Log.Debugf("调用 Gemini [%s]，请求 %d 字", req.Model, len([]rune(payload)))

	resp, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(payload), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return firstText(resp), nil
}

// firstText 只取第一个候选的第一段文字
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return NoResponse
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
		return NoResponse
	}
	if c.Content.Parts[0].Text == "" {
		return NoResponse
	}
	return c.Content.Parts[0].Text
}
