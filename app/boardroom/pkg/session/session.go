// Package session 保存一次页面生命周期内的全部状态。
//
// State 不做并发保护，由调用方串行访问。每个用户动作对应一个方法，
// 方法直接修改 State，并把需要执行的副作用（画图、落库）以 Effect 返回。
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/extract"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/logger"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/model"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/prompt"
)

// DefaultRiskScore 初始风险评分
const DefaultRiskScore = 50

// DefaultChartExplanation 图表没有附带解释时使用
const DefaultChartExplanation = "AI 自动生成图表"

// Greeting 聊天室开场白
const Greeting = "您好！我是企业决策 AI。我可以自动根据对话内容，为您生成最适合的数据图表。"

var (
	// ErrNoReport 追问前必须已有完成的 CEO 报告
	ErrNoReport = errors.New("no completed report to follow up on")
	// ErrEmptyQuery 问题为空
	ErrEmptyQuery = errors.New("query is empty")
)

// Effect 状态变更后需要执行的副作用
type Effect interface {
	isEffect()
}

// RenderLive 渲染实时图表
type RenderLive struct {
	Spec model.ChartSpec
}

// RenderHistory 在下一次刷新时把归档记录的图表渲染到对应画布
type RenderHistory struct {
	Index int
	Raw   string
}

// PersistLog 把归档记录写入外部存储
type PersistLog struct {
	Log model.MeetingLog
}

// ClearLive 撤下实时图表
type ClearLive struct{}

func (RenderLive) isEffect()    {}
func (RenderHistory) isEffect() {}
func (PersistLog) isEffect()    {}
func (ClearLive) isEffect()     {}

// State 会话状态
type State struct {
	APIKey string
	Model  string

	FileName    string
	DataExcerpt string

	Query   string // 当前轮次的问题
	Reports model.Report

	RiskScore        int
	ChartJSON        string
	HasChart         bool
	ChartExplanation string

	Step      model.Step
	Analyzing bool
	Round     int // 每开始一轮加一，用于判断延迟复位是否过期

	ContextMemory      string
	Histories          []model.MeetingLog
	SuggestedQuestions []string
	ChatHistory        []model.ChatMessage

	SummaryLimit int
	now          func() time.Time
}

// New 创建初始状态
func New(apiKey, modelID string, summaryLimit int) *State {
	return &State{
		APIKey:       apiKey,
		Model:        modelID,
		RiskScore:    DefaultRiskScore,
		SummaryLimit: summaryLimit,
		ChatHistory:  []model.ChatMessage{{Role: model.ChatAI, Content: Greeting}},
		now:          time.Now,
	}
}

// SetCredentials 更新 API Key 与模型；空值表示不修改
func (s *State) SetCredentials(apiKey, modelID string) {
	if apiKey != "" {
		s.APIKey = apiKey
	}
	if modelID != "" {
		s.Model = modelID
	}
}

// LoadExcerpt 保存已截断的数据摘要
func (s *State) LoadExcerpt(name, excerpt string) {
	s.FileName = name
	s.DataExcerpt = excerpt
}

// AppendChat 追加聊天消息
func (s *State) AppendChat(msg model.ChatMessage) {
	s.ChatHistory = append(s.ChatHistory, msg)
}

// Archive 把当前报告存入历史。没有 CEO 报告时什么都不做。
func (s *State) Archive() []Effect {
	if !s.Reports.HasCEO() {
		return nil
	}
	entry := model.MeetingLog{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Query:     s.Query,
		Reports:   s.Reports,
		RiskScore: s.RiskScore,
		ChartJSON: s.ChartJSON,
		CreatedAt: s.now(),
	}
	s.Histories = append(s.Histories, entry)

	effects := []Effect{PersistLog{Log: entry}}
	if entry.ChartJSON != "" {
		effects = append(effects, RenderHistory{Index: len(s.Histories) - 1, Raw: entry.ChartJSON})
	}
	return effects
}

// BeginFresh 开始新议题。已有完成报告时先归档并清空会议脉络。
func (s *State) BeginFresh(query string) ([]Effect, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	var effects []Effect
	if s.Reports.HasCEO() {
		effects = s.Archive()
		s.ContextMemory = ""
	}
	return append(effects, s.proceed(query)...), nil
}

// BeginFollowUp 针对上一轮结论追问：归档、累积会议脉络后以追问内容开新一轮
func (s *State) BeginFollowUp(question string) ([]Effect, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuery
	}
	if !s.Reports.HasCEO() {
		return nil, ErrNoReport
	}
	prevQuery, prevCEO := s.Query, s.Reports.CEO
	effects := s.Archive()
	s.ContextMemory += prompt.Summary(prevQuery, prevCEO, s.SummaryLimit)
	return append(effects, s.proceed(question)...), nil
}

func (s *State) proceed(query string) []Effect {
	s.Query = query
	s.Reports = model.Report{}
	s.SuggestedQuestions = nil
	s.ChartJSON = ""
	s.HasChart = false
	s.ChartExplanation = ""
	s.Analyzing = true
	s.Round++
	s.Step = model.StepCFO
	return []Effect{ClearLive{}}
}

// CommitCFO 保存 CFO 报告并进入 COO 阶段
func (s *State) CommitCFO(text string) {
	s.Reports.CFO = text
	s.Step = model.StepCOO
}

// CommitCOO 保存 COO 报告并进入 CEO 阶段
func (s *State) CommitCOO(text string) {
	s.Reports.COO = text
	s.Step = model.StepCEO
}

// CommitCEO 依次取出风险评分与图表，剩余文字作为 CEO 报告
func (s *State) CommitCEO(raw string) []Effect {
	var effects []Effect
	text := raw

	if score, ok, cleaned := extract.RiskScore(text); ok {
		s.RiskScore = clampRisk(score)
		text = cleaned
	}

	if spec, chartRaw, ok, cleaned := extract.Chart(text); ok {
		s.ChartJSON = chartRaw
		s.HasChart = true
		s.ChartExplanation = spec.Explanation
		if s.ChartExplanation == "" {
			s.ChartExplanation = DefaultChartExplanation
		}
		effects = append(effects, RenderLive{Spec: spec})
		text = cleaned
	}

	s.Reports.CEO = strings.TrimSpace(text)
	return effects
}

func clampRisk(score int) int {
	if score < 0 || score > 100 {
		clamped := min(max(score, 0), 100)
		logger.Log.Warnf("风险评分 %d 超出范围，按 %d 处理", score, clamped)
		return clamped
	}
	return score
}

// ChartFailed 实时图表渲染失败时收起图表
func (s *State) ChartFailed() {
	s.HasChart = false
}

// CommitFollowUps 保存追问建议
func (s *State) CommitFollowUps(questions []string) {
	s.SuggestedQuestions = append([]string(nil), questions...)
}

// Finish 结束本轮分析，进度条稍后由 ResetStep 复位
func (s *State) Finish() {
	s.Analyzing = false
}

// ResetStep 进度条回到待命；round 已过期（又开始了新一轮）时不处理
func (s *State) ResetStep(round int) {
	if round != s.Round || s.Analyzing {
		return
	}
	s.Step = model.StepIdle
}

// Snapshot 对外展示用的只读副本
type Snapshot struct {
	FileName           string              `json:"file_name"`
	HasData            bool                `json:"has_data"`
	HasAPIKey          bool                `json:"has_api_key"`
	Model              string              `json:"model"`
	Query              string              `json:"query"`
	Reports            model.Report        `json:"reports"`
	RiskScore          int                 `json:"risk_score"`
	RiskLevel          string              `json:"risk_level"`
	HasChart           bool                `json:"has_chart"`
	ChartJSON          string              `json:"chart_json,omitempty"`
	ChartExplanation   string              `json:"chart_explanation,omitempty"`
	Step               model.Step          `json:"step"`
	Progress           int                 `json:"progress"`
	ProgressText       string              `json:"progress_text"`
	Analyzing          bool                `json:"analyzing"`
	Round              int                 `json:"round"`
	ContextMemory      string              `json:"context_memory"`
	Histories          []model.MeetingLog  `json:"histories"`
	SuggestedQuestions []string            `json:"suggested_questions"`
	ChatHistory        []model.ChatMessage `json:"chat_history"`
}

// Snapshot 复制当前状态
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		FileName:           s.FileName,
		HasData:            s.DataExcerpt != "",
		HasAPIKey:          s.APIKey != "",
		Model:              s.Model,
		Query:              s.Query,
		Reports:            s.Reports,
		RiskScore:          s.RiskScore,
		RiskLevel:          model.RiskLevel(s.RiskScore),
		HasChart:           s.HasChart,
		ChartJSON:          s.ChartJSON,
		ChartExplanation:   s.ChartExplanation,
		Step:               s.Step,
		Progress:           s.Step.Progress(),
		ProgressText:       s.Step.Text(),
		Analyzing:          s.Analyzing,
		Round:              s.Round,
		ContextMemory:      s.ContextMemory,
		Histories:          append([]model.MeetingLog(nil), s.Histories...),
		SuggestedQuestions: append([]string(nil), s.SuggestedQuestions...),
		ChatHistory:        append([]model.ChatMessage(nil), s.ChatHistory...),
	}
}
