package biz

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/engine"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/excerpt"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/gateway"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/model"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/session"
)

var (
	ErrMissingAPIKey = gateway.ErrMissingAPIKey
	ErrNoData        = engine.ErrNoData
	ErrBusy          = engine.ErrBusy
	ErrEmptyQuery    = session.ErrEmptyQuery
	ErrNoReport      = session.ErrNoReport
)

// Boardroom 高管会议引擎提供的能力
type Boardroom interface {
	Run(ctx context.Context, opts engine.RunOptions) error
	Chat(ctx context.Context, message string) (model.ChatMessage, error)
	LoadData(name string, r io.Reader) (*excerpt.Excerpt, error)
	SetCredentials(apiKey, modelID string)
	Snapshot() session.Snapshot
	Surface(target string) ([]byte, bool)
	Meetings(ctx context.Context, limit int) ([]model.MeetingLog, error)
	Reset() error
}

// PanelUseCase 会议控制台业务逻辑
type PanelUseCase struct {
	room Boardroom
	log  *log.Helper

	mu      sync.Mutex
	lastErr string
	running bool
	wg      sync.WaitGroup
}

// NewPanelUseCase 创建会议控制台业务逻辑实例
func NewPanelUseCase(room Boardroom, logger log.Logger) *PanelUseCase {
	return &PanelUseCase{room: room, log: log.NewHelper(logger)}
}

// State 会话状态与最近一次分析错误
func (uc *PanelUseCase) State() (session.Snapshot, string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.room.Snapshot(), uc.lastErr
}

// StartAnalysis 检查前置条件后在后台跑完一整轮，结果通过 State 查询。
// 同一时间只接受一轮，检查与占位在同一把锁内完成。
func (uc *PanelUseCase) StartAnalysis(ctx context.Context, query string, followUp bool) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	snap := uc.room.Snapshot()
	switch {
	case uc.running || snap.Analyzing:
		return ErrBusy
	case !snap.HasAPIKey:
		return ErrMissingAPIKey
	case !snap.HasData:
		return ErrNoData
	case strings.TrimSpace(query) == "":
		return ErrEmptyQuery
	case followUp && snap.Reports.CEO == "":
		return ErrNoReport
	}

	uc.lastErr = ""
	uc.running = true
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		err := uc.room.Run(context.WithoutCancel(ctx), engine.RunOptions{Query: query, FollowUp: followUp})

		uc.mu.Lock()
		defer uc.mu.Unlock()
		uc.running = false
		if err == nil {
			return
		}
		if errors.Is(err, ErrBusy) {
			uc.log.Warnf("分析已在进行，本次请求被引擎拒绝: %s", query)
			return
		}
		uc.log.Errorf("分析错误: %v", err)
		uc.lastErr = err.Error()
	}()
	return nil
}

// Wait 等待后台分析结束
func (uc *PanelUseCase) Wait() {
	uc.wg.Wait()
}

// Chat 自由对话
func (uc *PanelUseCase) Chat(ctx context.Context, message string) (model.ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return model.ChatMessage{}, ErrEmptyQuery
	}
	return uc.room.Chat(ctx, message)
}

// UploadData 上传数据文件
func (uc *PanelUseCase) UploadData(name string, r io.Reader) (*excerpt.Excerpt, error) {
	return uc.room.LoadData(name, r)
}

// UpdateSettings 更新 API Key 与模型
func (uc *PanelUseCase) UpdateSettings(apiKey, modelID string) session.Snapshot {
	uc.room.SetCredentials(strings.TrimSpace(apiKey), strings.TrimSpace(modelID))
	return uc.room.Snapshot()
}

// Chart 取回图表 SVG
func (uc *PanelUseCase) Chart(target string) ([]byte, bool) {
	return uc.room.Surface(target)
}

// Meetings 历史会议
func (uc *PanelUseCase) Meetings(ctx context.Context, limit int) ([]model.MeetingLog, error) {
	return uc.room.Meetings(ctx, limit)
}

// Reset 重置整个会话
func (uc *PanelUseCase) Reset() error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.running {
		return ErrBusy
	}
	if err := uc.room.Reset(); err != nil {
		return err
	}
	uc.lastErr = ""
	return nil
}

// IsBadRequest 是否属于调用方可以修正的错误
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrMissingAPIKey) || errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrEmptyQuery) || errors.Is(err, ErrNoReport) || errors.Is(err, excerpt.ErrEmpty)
}
