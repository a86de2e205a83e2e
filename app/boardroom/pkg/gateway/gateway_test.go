package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testReq = Request{
	APIKey:      "test-key",
	Model:       "gemini-test",
	RolePrompt:  "你是 CFO",
	DataExcerpt: "月份,营收\n1,100",
	Question:    "要扩张吗？",
}

type geminiBody struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

func TestFormatError(t *testing.T) {
	got := FormatError("gemini-test", errors.New("quota exceeded"))
	assert.Equal(t, "Error (gemini-test): quota exceeded", got)
}

func TestGemini_MissingKeyBeforeNetwork(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hit = true }))
	defer srv.Close()

	req := testReq
	req.APIKey = ""
	_, err := NewGeminiGateway(srv.URL, srv.Client()).Call(context.Background(), req)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, hit)
}

func TestGemini_Success(t *testing.T) {
	var gotPath string
	var body geminiBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"建议扩张"},{"text":"忽略"}]}}]}`))
	}))
	defer srv.Close()

	text, err := NewGeminiGateway(srv.URL, srv.Client()).Call(context.Background(), testReq)
	require.NoError(t, err)
	assert.Equal(t, "建议扩张", text)
	assert.True(t, strings.HasSuffix(gotPath, "models/gemini-test:generateContent"), gotPath)

	require.Len(t, body.Contents, 1)
	require.Len(t, body.Contents[0].Parts, 1)
	assert.Equal(t, "[角色]: 你是 CFO\n[数据摘要]: 月份,营收\n1,100\n[用户问题]: 要扩张吗？", body.Contents[0].Parts[0].Text)
}

func TestGemini_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	text, err := NewGeminiGateway(srv.URL, srv.Client()).Call(context.Background(), testReq)
	require.NoError(t, err)
	assert.Equal(t, NoResponse, text)
}

func TestGemini_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	_, err := NewGeminiGateway(srv.URL, srv.Client()).Call(context.Background(), testReq)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

// fakeChatModel 记录收到的消息并返回固定结果
type fakeChatModel struct {
	reply    *schema.Message
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.received = input
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func newFakeOpenAI(fake *fakeChatModel, cfgSeen **openai.ChatModelConfig) *OpenAIGateway {
	g := NewOpenAIGateway("https://api.example.com/v1")
	g.newModel = func(_ context.Context, cfg *openai.ChatModelConfig) (model.BaseChatModel, error) {
		*cfgSeen = cfg
		return fake, nil
	}
	return g
}

func TestOpenAI_Success(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("收缩", nil)}
	var cfg *openai.ChatModelConfig
	g := newFakeOpenAI(fake, &cfg)

	req := testReq
	req.Model = "gpt-test"
	text, err := g.Call(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "收缩", text)

	require.NotNil(t, cfg)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "gpt-test", cfg.Model)
	require.Len(t, fake.received, 1)
	assert.Equal(t, schema.User, fake.received[0].Role)
	assert.Contains(t, fake.received[0].Content, "[用户问题]: 要扩张吗？")
}

func TestOpenAI_EmptyAndError(t *testing.T) {
	var cfg *openai.ChatModelConfig

	text, err := newFakeOpenAI(&fakeChatModel{reply: schema.AssistantMessage("", nil)}, &cfg).Call(context.Background(), testReq)
	require.NoError(t, err)
	assert.Equal(t, NoResponse, text)

	_, err = newFakeOpenAI(&fakeChatModel{err: errors.New("429 too many requests")}, &cfg).Call(context.Background(), testReq)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAI_MissingKey(t *testing.T) {
	var cfg *openai.ChatModelConfig
	req := testReq
	req.APIKey = ""
	_, err := newFakeOpenAI(&fakeChatModel{}, &cfg).Call(context.Background(), req)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Nil(t, cfg)
}
