package gateway

import (
	"context"
	"errors"
	"fmt"
)

// NoResponse 模型成功返回但没有生成任何内容
const NoResponse = "无回应"

// ErrMissingAPIKey 未设置 API Key，调用前即拒绝
var ErrMissingAPIKey = errors.New("api key is missing")

// Gateway 定义通用的模型调用接口
type Gateway interface {
	Call(ctx context.Context, req Request) (string, error)
}

// Request 一次模型调用
type Request struct {
	APIKey      string
	Model       string
	RolePrompt  string
	DataExcerpt string
	Question    string
}

// FormatError 把调用失败转成可直接展示的文字
func FormatError(model string, err error) string {
	return fmt.Sprintf("Error (%s): %s", model, err.Error())
}
