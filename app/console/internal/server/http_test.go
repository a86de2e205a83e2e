package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/config"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/engine"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/gateway"
	"github.com/iWorld-y/boardroom/app/console/internal/biz"
	"github.com/iWorld-y/boardroom/app/console/internal/conf"
	"github.com/iWorld-y/boardroom/app/console/internal/service"
)

const ceoReply = "Decision: expand.\n```json\n{\"risk_score\": 72}\n```\n```json\n{\"chart\":{\"type\":\"bar\",\"title\":\"Q\",\"labels\":[\"A\",\"B\"],\"data\":[1,2],\"datasetLabel\":\"X\",\"explanation\":\"Y\"}}\n```"

// stubGateway 按角色提示词返回固定内容
type stubGateway struct{}

func (stubGateway) Call(_ context.Context, req gateway.Request) (string, error) {
	if req.APIKey == "" {
		return "", gateway.ErrMissingAPIKey
	}
	switch {
	case strings.HasPrefix(req.RolePrompt, "你是 CEO"):
		return ceoReply, nil
	case strings.HasPrefix(req.RolePrompt, "你是董事会秘书"):
		return `["现金流？"]`, nil
	default:
		return "| 指标 | 数值 |\n| --- | --- |\n| 营收 | 100 |", nil
	}
}

func newTestServer(t *testing.T) (nethttp.Handler, *biz.PanelUseCase) {
	t.Helper()
	cfg := config.Default()
	eng, err := engine.NewEngine(cfg, nil, engine.WithGateway(stubGateway{}))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	uc := biz.NewPanelUseCase(eng, log.DefaultLogger)
	svc := service.NewPanelService(uc, log.DefaultLogger)
	return NewHTTPServer(&conf.Server{Http: &conf.HTTP{}}, svc, log.DefaultLogger), uc
}

func do(t *testing.T, h nethttp.Handler, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, h nethttp.Handler, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(v)
	return do(t, h, nethttp.MethodPost, path, "application/json", b)
}

func TestHTTP_AnalysisFlow(t *testing.T) {
	h, uc := newTestServer(t)

	if rec := postJSON(t, h, "/api/analysis", map[string]any{"query": "题"}); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("analysis without key = %d, want 400", rec.Code)
	}

	if rec := postJSON(t, h, "/api/settings", map[string]string{"api_key": "k"}); rec.Code != nethttp.StatusOK {
		t.Fatalf("settings = %d: %s", rec.Code, rec.Body.String())
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "sales.csv")
	fw.Write([]byte("月份,营收\n1,100\n"))
	mw.Close()
	if rec := do(t, h, nethttp.MethodPost, "/api/data", mw.FormDataContentType(), buf.Bytes()); rec.Code != nethttp.StatusOK {
		t.Fatalf("upload = %d: %s", rec.Code, rec.Body.String())
	}

	if rec := postJSON(t, h, "/api/analysis", map[string]any{"query": "要扩张吗？"}); rec.Code != nethttp.StatusAccepted {
		t.Fatalf("analysis = %d: %s", rec.Code, rec.Body.String())
	}
	uc.Wait()

	rec := do(t, h, nethttp.MethodGet, "/api/state", "", nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("state = %d", rec.Code)
	}
	var state struct {
		RiskScore   int               `json:"risk_score"`
		HasChart    bool              `json:"has_chart"`
		FileName    string            `json:"file_name"`
		ReportsHTML map[string]string `json:"reports_html"`
		ChartURL    string            `json:"chart_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.RiskScore != 72 || !state.HasChart || state.FileName != "sales.csv" {
		t.Errorf("state = %+v", state)
	}
	if !strings.Contains(state.ReportsHTML["cfo"], `<table class="table`) {
		t.Errorf("cfo html = %q", state.ReportsHTML["cfo"])
	}
	if !strings.HasPrefix(state.ChartURL, "/api/charts/dynamicChart") {
		t.Errorf("chart url = %q", state.ChartURL)
	}

	rec = do(t, h, nethttp.MethodGet, "/api/charts/dynamicChart", "", nil)
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Errorf("chart = %d", rec.Code)
	}
	if rec := do(t, h, nethttp.MethodGet, "/api/charts/historyChart-9", "", nil); rec.Code != nethttp.StatusNotFound {
		t.Errorf("missing chart = %d, want 404", rec.Code)
	}

	rec = do(t, h, nethttp.MethodGet, "/report", "", nil)
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), "Decision: expand.") {
		t.Errorf("report = %d", rec.Code)
	}

	if rec := postJSON(t, h, "/api/analysis", map[string]any{"query": "现金流？", "follow_up": true}); rec.Code != nethttp.StatusAccepted {
		t.Fatalf("follow-up = %d: %s", rec.Code, rec.Body.String())
	}
	uc.Wait()
	rec = do(t, h, nethttp.MethodGet, "/api/meetings", "", nil)
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), "要扩张吗？") {
		t.Errorf("meetings = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHTTP_ChatAndReset(t *testing.T) {
	h, _ := newTestServer(t)

	if rec := postJSON(t, h, "/api/chat", map[string]string{"message": ""}); rec.Code != nethttp.StatusBadRequest {
		t.Errorf("empty chat = %d, want 400", rec.Code)
	}
	postJSON(t, h, "/api/settings", map[string]string{"api_key": "k"})
	rec := postJSON(t, h, "/api/chat", map[string]string{"message": "营收？"})
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), "营收") {
		t.Errorf("chat = %d: %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, h, nethttp.MethodPost, "/api/reset", "", nil); rec.Code != nethttp.StatusOK {
		t.Errorf("reset = %d", rec.Code)
	}
	if rec := do(t, h, nethttp.MethodGet, "/", "", nil); rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), "AI 高管会议") {
		t.Errorf("index = %d", rec.Code)
	}
}
