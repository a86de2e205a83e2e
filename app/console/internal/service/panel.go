package service

import (
	"errors"
	"strconv"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/chart"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/engine"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/markdown"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/model"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/report"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/session"
	"github.com/iWorld-y/boardroom/app/console/internal/biz"
)

// maxUploadSize 上传文件大小上限
const maxUploadSize = 32 << 20

type PanelService struct {
	uc  *biz.PanelUseCase
	log *log.Helper
}

func NewPanelService(uc *biz.PanelUseCase, logger log.Logger) *PanelService {
	return &PanelService{uc: uc, log: log.NewHelper(logger)}
}

// StateReply 页面轮询的完整状态，报告附带渲染好的 HTML
type StateReply struct {
	session.Snapshot
	ReportsHTML map[model.Role]string `json:"reports_html"`
	ChatHTML    []string              `json:"chat_html"`
	ChartURL    string                `json:"chart_url,omitempty"`
	LastError   string                `json:"last_error,omitempty"`
}

type SettingsReq struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

type ChatReq struct {
	Message string `json:"message"`
}

type AnalysisReq struct {
	Query    string `json:"query"`
	FollowUp bool   `json:"follow_up"`
}

type DataReply struct {
	FileName  string `json:"file_name"`
	Length    int    `json:"length"`
	Truncated bool   `json:"truncated"`
}

func (s *PanelService) State(ctx http.Context) error {
	snap, lastErr := s.uc.State()
	reply := StateReply{
		Snapshot: snap,
		ReportsHTML: map[model.Role]string{
			model.RoleCFO: markdown.HTML(snap.Reports.CFO),
			model.RoleCOO: markdown.HTML(snap.Reports.COO),
			model.RoleCEO: markdown.HTML(snap.Reports.CEO),
		},
		LastError: lastErr,
	}
	for _, m := range snap.ChatHistory {
		reply.ChatHTML = append(reply.ChatHTML, markdown.HTML(m.Content))
	}
	if snap.HasChart {
		// 带上轮次，图表更新后浏览器重新加载
		reply.ChartURL = "/api/charts/" + chart.LiveTarget + "?r=" + strconv.Itoa(snap.Round)
	}
	return ctx.Result(200, reply)
}

func (s *PanelService) UpdateSettings(ctx http.Context) error {
	var req SettingsReq
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest("INVALID_REQUEST", err.Error())
	}
	snap := s.uc.UpdateSettings(req.APIKey, req.Model)
	return ctx.Result(200, map[string]any{"has_api_key": snap.HasAPIKey, "model": snap.Model})
}

func (s *PanelService) UploadData(ctx http.Context) error {
	r := ctx.Request()
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return kerrors.BadRequest("INVALID_UPLOAD", err.Error())
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return kerrors.BadRequest("INVALID_UPLOAD", err.Error())
	}
	defer file.Close()

	ex, err := s.uc.UploadData(header.Filename, file)
	if err != nil {
		return s.toError(err)
	}
	s.log.Infof("数据文件 %s 读取成功", ex.Name)
	return ctx.Result(200, DataReply{FileName: ex.Name, Length: len([]rune(ex.Text)), Truncated: ex.Truncated})
}

func (s *PanelService) Chat(ctx http.Context) error {
	var req ChatReq
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest("INVALID_REQUEST", err.Error())
	}
	reply, err := s.uc.Chat(ctx, req.Message)
	if err != nil && reply.Content == "" {
		return s.toError(err)
	}
	return ctx.Result(200, reply)
}

func (s *PanelService) StartAnalysis(ctx http.Context) error {
	var req AnalysisReq
	if err := ctx.Bind(&req); err != nil {
		return kerrors.BadRequest("INVALID_REQUEST", err.Error())
	}
	if err := s.uc.StartAnalysis(ctx, req.Query, req.FollowUp); err != nil {
		return s.toError(err)
	}
	return ctx.Result(202, map[string]bool{"accepted": true})
}

func (s *PanelService) Chart(ctx http.Context) error {
	target := ctx.Vars().Get("target")
	svg, ok := s.uc.Chart(target)
	if !ok {
		return kerrors.NotFound("CHART_NOT_FOUND", "chart "+target+" not rendered")
	}
	return ctx.Blob(200, "image/svg+xml", svg)
}

func (s *PanelService) Meetings(ctx http.Context) error {
	limit, _ := strconv.Atoi(ctx.Query().Get("limit"))
	logs, err := s.uc.Meetings(ctx, limit)
	if err != nil {
		return s.toError(err)
	}
	return ctx.Result(200, map[string]any{"meetings": logs})
}

func (s *PanelService) Reset(ctx http.Context) error {
	if err := s.uc.Reset(); err != nil {
		return s.toError(err)
	}
	return ctx.Result(200, map[string]bool{"reset": true})
}

// Report 导出当前会话的 HTML 报告
func (s *PanelService) Report(ctx http.Context) error {
	snap, _ := s.uc.State()
	w := ctx.Response()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return report.Render(w, snap, chartSource{s.uc}, time.Now())
}

type chartSource struct{ uc *biz.PanelUseCase }

func (c chartSource) Surface(target string) ([]byte, bool) { return c.uc.Chart(target) }

func (s *PanelService) toError(err error) error {
	switch {
	case errors.Is(err, engine.ErrBusy):
		return kerrors.Conflict("ANALYSIS_IN_PROGRESS", err.Error())
	case errors.Is(err, biz.ErrMissingAPIKey):
		return kerrors.BadRequest("MISSING_API_KEY", "请先输入 API Key")
	case errors.Is(err, biz.ErrNoData):
		return kerrors.BadRequest("NO_DATA", "请先上传数据文件")
	case biz.IsBadRequest(err):
		return kerrors.BadRequest("INVALID_REQUEST", err.Error())
	default:
		s.log.Errorf("request failed: %v", err)
		return kerrors.InternalServer("INTERNAL", err.Error())
	}
}
