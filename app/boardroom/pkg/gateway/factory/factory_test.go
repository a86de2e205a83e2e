package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/config"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/gateway"
)

func TestNewGateway(t *testing.T) {
	cfg := config.Default()
	gw, err := NewGateway(cfg)
	require.NoError(t, err)
	assert.IsType(t, &gateway.GeminiGateway{}, gw)

	cfg.LLM.Provider = "openai"
	_, err = NewGateway(cfg)
	assert.Error(t, err, "openai needs a base url")

	cfg.LLM.BaseURL = "https://api.example.com/v1"
	gw, err = NewGateway(cfg)
	require.NoError(t, err)
	assert.IsType(t, &gateway.OpenAIGateway{}, gw)

	cfg.LLM.Provider = "claude"
	_, err = NewGateway(cfg)
	assert.Error(t, err)
}
