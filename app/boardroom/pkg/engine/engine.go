package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/chart"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/config"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/excerpt"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/extract"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/gateway"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/gateway/factory"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/logger"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/model"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/prompt"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/session"
)

// ChatFallback 未设置 API Key 时聊天室的回复
const ChatFallback = "连线错误或 API Key 无效。"

var (
	// ErrBusy 上一轮分析尚未结束
	ErrBusy = errors.New("analysis already in progress")
	// ErrNoData 尚未上传数据文件
	ErrNoData = errors.New("no data excerpt loaded")
)

// Archiver 会议记录的外部存储
type Archiver interface {
	SaveMeetingLog(ctx context.Context, log model.MeetingLog) error
	ListMeetingLogs(ctx context.Context, limit int) ([]model.MeetingLog, error)
}

// Engine 高管会议引擎
type Engine struct {
	cfg     *config.Config
	store   Archiver
	gateway gateway.Gateway
	display *chart.Display
	limiter *rate.Limiter

	mu    sync.Mutex
	state *session.State
}

// Option 引擎选项
type Option func(*Engine)

// WithGateway 替换模型网关
func WithGateway(gw gateway.Gateway) Option {
	return func(e *Engine) { e.gateway = gw }
}

// WithRenderer 替换图表渲染器
func WithRenderer(r chart.Renderer) Option {
	return func(e *Engine) { e.display = chart.NewDisplay(r) }
}

// NewEngine 创建引擎实例，store 可以为 nil
func NewEngine(cfg *config.Config, store Archiver, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:     cfg,
		store:   store,
		limiter: newLimiter(cfg.Concurrency),
		state:   newState(cfg),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.gateway == nil {
		gw, err := factory.NewGateway(cfg)
		if err != nil {
			return nil, fmt.Errorf("模型网关初始化失败: %w", err)
		}
		e.gateway = gw
	}
	if e.display == nil {
		e.display = chart.NewDisplay(chart.NewSVGRenderer(cfg.Chart.Width, cfg.Chart.Height))
	}
	return e, nil
}

func newState(cfg *config.Config) *session.State {
	return session.New(cfg.LLM.APIKey, cfg.LLM.Model, cfg.Panel.SummaryLimit)
}

// newLimiter 未配置 RPM 时不限速
func newLimiter(c config.ConcurrencyConfig) *rate.Limiter {
	if c.RPM <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := c.QPS
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(c.RPM)/60.0), burst)
}

// RunOptions 运行选项
type RunOptions struct {
	Query    string
	FollowUp bool // 针对上一轮结论追问
	Progress func(step model.Step)
}

// Run 执行一轮 CFO → COO → CEO 分析，随后生成追问建议。
// 一旦开始就不会因调用方取消而中断。
func (e *Engine) Run(ctx context.Context, opts RunOptions) error {
	ctx = context.WithoutCancel(ctx)

	e.mu.Lock()
	if e.state.Analyzing {
		e.mu.Unlock()
		return ErrBusy
	}
	if e.state.APIKey == "" {
		e.mu.Unlock()
		return gateway.ErrMissingAPIKey
	}
	if e.state.DataExcerpt == "" {
		e.mu.Unlock()
		return ErrNoData
	}

	var effects []session.Effect
	var err error
	if opts.FollowUp {
		effects, err = e.state.BeginFollowUp(opts.Query)
	} else {
		effects, err = e.state.BeginFresh(opts.Query)
	}
	if err != nil {
		e.mu.Unlock()
		return err
	}
	round := e.state.Round
	base := gateway.Request{
		APIKey:      e.state.APIKey,
		Model:       e.state.Model,
		DataExcerpt: e.state.DataExcerpt,
		Question:    e.state.Query,
	}
	memory := e.state.ContextMemory
	e.mu.Unlock()

	logger.Log.WithField("round", round).Infof("开始高管会议: %s", base.Question)
	defer e.finish(round)

	e.apply(ctx, effects)
	notify(opts.Progress, model.StepCFO)

	// 1. CFO
	cfo, err := e.call(ctx, base, prompt.CFO(memory))
	if err != nil {
		return fmt.Errorf("CFO 分析失败: %w", err)
	}
	e.mu.Lock()
	e.state.CommitCFO(cfo)
	e.mu.Unlock()
	notify(opts.Progress, model.StepCOO)

	// 2. COO
	coo, err := e.call(ctx, base, prompt.COO(memory, cfo))
	if err != nil {
		return fmt.Errorf("COO 分析失败: %w", err)
	}
	e.mu.Lock()
	e.state.CommitCOO(coo)
	e.mu.Unlock()
	notify(opts.Progress, model.StepCEO)

	// 3. CEO
	raw, err := e.call(ctx, base, prompt.CEO(memory, cfo, coo))
	if err != nil {
		return fmt.Errorf("CEO 分析失败: %w", err)
	}
	e.mu.Lock()
	effects = e.state.CommitCEO(raw)
	ceo := e.state.Reports.CEO
	e.mu.Unlock()
	e.apply(ctx, effects)

	// 4. 追问建议，失败时使用默认问题
	var questions []string
	if text, err := e.call(ctx, base, prompt.FollowUps(base.Question, ceo)); err != nil {
		logger.Log.WithField("round", round).Warnf("生成追问建议失败: %v", err)
		questions = append([]string(nil), extract.DefaultFollowUps...)
	} else {
		questions = extract.FollowUps(text)
	}
	e.mu.Lock()
	e.state.CommitFollowUps(questions)
	e.mu.Unlock()

	logger.Log.WithField("round", round).Info("高管会议完成")
	return nil
}

func notify(fn func(model.Step), step model.Step) {
	if fn != nil {
		fn(step)
	}
}

func (e *Engine) call(ctx context.Context, base gateway.Request, role string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}
	req := base
	req.RolePrompt = role
	return e.gateway.Call(ctx, req)
}

// finish 结束本轮，并在展示延迟后把进度条复位
func (e *Engine) finish(round int) {
	e.mu.Lock()
	e.state.Finish()
	e.mu.Unlock()

	time.AfterFunc(e.cfg.Panel.StepResetDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.state.ResetStep(round)
	})
}

// apply 执行状态变更产生的副作用，不持有状态锁
func (e *Engine) apply(ctx context.Context, effects []session.Effect) {
	for _, eff := range effects {
		switch eff := eff.(type) {
		case session.ClearLive:
			e.display.ClearLive()
		case session.RenderLive:
			if !e.display.ShowLive(eff.Spec) {
				e.mu.Lock()
				e.state.ChartFailed()
				e.mu.Unlock()
			}
		case session.RenderHistory:
			e.display.ShowHistory(eff.Index, eff.Raw)
		case session.PersistLog:
			if e.store == nil {
				continue
			}
			if err := e.store.SaveMeetingLog(ctx, eff.Log); err != nil {
				logger.Log.Errorf("保存会议记录失败 [%s]: %v", eff.Log.ID, err)
			}
		}
	}
}

// Chat 自由对话。调用失败时把错误写成 AI 回复，只有空消息与缺少 API Key 会返回错误。
func (e *Engine) Chat(ctx context.Context, message string) (model.ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return model.ChatMessage{}, session.ErrEmptyQuery
	}
	e.mu.Lock()
	e.state.AppendChat(model.ChatMessage{Role: model.ChatUser, Content: message})
	req := gateway.Request{
		APIKey:      e.state.APIKey,
		Model:       e.state.Model,
		DataExcerpt: e.state.DataExcerpt,
		Question:    message,
	}
	e.mu.Unlock()

	var reply model.ChatMessage
	var retErr error
	text, err := e.call(ctx, req, prompt.Chat)
	switch {
	case errors.Is(err, gateway.ErrMissingAPIKey):
		reply = model.ChatMessage{Role: model.ChatAI, Content: ChatFallback}
		retErr = err
	case err != nil:
		logger.Log.Warnf("聊天调用失败: %v", err)
		reply = model.ChatMessage{Role: model.ChatAI, Content: gateway.FormatError(req.Model, err), Model: req.Model}
	default:
		reply = model.ChatMessage{Role: model.ChatAI, Content: text, Model: req.Model}
	}

	e.mu.Lock()
	e.state.AppendChat(reply)
	e.mu.Unlock()
	return reply, retErr
}

// LoadData 读取数据文件作为之后每次调用的数据摘要
func (e *Engine) LoadData(name string, r io.Reader) (*excerpt.Excerpt, error) {
	ex, err := excerpt.Load(name, r, e.cfg.Data.ExcerptBudget)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.state.LoadExcerpt(ex.Name, ex.Text)
	e.mu.Unlock()
	logger.Log.Infof("数据文件 [%s] 读取成功，%d 字", ex.Name, len([]rune(ex.Text)))
	return ex, nil
}

// SetCredentials 设置 API Key 与模型，空值表示不修改
func (e *Engine) SetCredentials(apiKey, modelID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.SetCredentials(apiKey, modelID)
}

// Snapshot 当前会话状态
func (e *Engine) Snapshot() session.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Snapshot()
}

// Surface 取回图表画布
func (e *Engine) Surface(target string) ([]byte, bool) {
	return e.display.Renderer().Surface(target)
}

// Meetings 配置了存储时从存储读取，否则返回本次会话的历史
func (e *Engine) Meetings(ctx context.Context, limit int) ([]model.MeetingLog, error) {
	if e.store != nil {
		return e.store.ListMeetingLogs(ctx, limit)
	}
	logs := e.Snapshot().Histories
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return logs, nil
}

// Reset 回到初始状态，分析进行中时拒绝
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Analyzing {
		return ErrBusy
	}
	e.state = newState(e.cfg)
	e.display.Reset()
	return nil
}
