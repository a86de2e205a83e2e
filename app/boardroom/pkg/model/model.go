package model

import "time"

// Role 高管角色
type Role string

const (
	RoleCFO Role = "cfo"
	RoleCOO Role = "coo"
	RoleCEO Role = "ceo"
)

// Report 一轮会议的三份角色报告，空字符串表示尚未产出
type Report struct {
	CFO string `json:"cfo"`
	COO string `json:"coo"`
	CEO string `json:"ceo"`
}

// HasCEO 是否已有 CEO 结论
func (r Report) HasCEO() bool {
	return r.CEO != ""
}

// ChartSpec 从 CEO 输出中解析出的图表定义
type ChartSpec struct {
	Type         string    `json:"type"` // bar 或 line
	Title        string    `json:"title"`
	Labels       []string  `json:"labels"`
	Data         []float64 `json:"data"`
	DatasetLabel string    `json:"datasetLabel"`
	Explanation  string    `json:"explanation"`
}

// MeetingLog 归档后的历史会议记录，创建后不再修改
type MeetingLog struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Reports   Report    `json:"reports"`
	RiskScore int       `json:"risk_score"`
	ChartJSON string    `json:"chart_json"` // 归档时的原始图表 JSON
	CreatedAt time.Time `json:"created_at"`
}

// ChatRole 聊天消息发送方
type ChatRole string

const (
	ChatUser ChatRole = "user"
	ChatAI   ChatRole = "ai"
)

// ChatMessage 聊天记录中的一条消息
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
	Model   string   `json:"model,omitempty"`
}

// Step 高管分析进度
type Step int

const (
	StepIdle Step = iota
	StepCFO
	StepCOO
	StepCEO
)

// Progress 进度条百分比
func (s Step) Progress() int {
	switch s {
	case StepCFO:
		return 33
	case StepCOO:
		return 66
	case StepCEO:
		return 100
	default:
		return 0
	}
}

// Text 进度提示文字
func (s Step) Text() string {
	switch s {
	case StepCFO:
		return "CFO 正在审计财务数据..."
	case StepCOO:
		return "COO 正在检视供应链效率..."
	case StepCEO:
		return "CEO 正在构建可视化战略..."
	default:
		return "等待指令"
	}
}

// RiskLevel 风险评分对应的展示等级
func RiskLevel(score int) string {
	switch {
	case score < 40:
		return "success"
	case score < 75:
		return "warning"
	default:
		return "danger"
	}
}
