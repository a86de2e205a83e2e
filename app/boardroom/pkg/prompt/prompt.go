// Package prompt 拼装各高管角色的指令文本。
package prompt

import (
	"fmt"
	"strings"
)

// Chat 自由对话使用的角色设定
const Chat = "你是数据助手，请简洁回答，需要时使用表格。"

// Compose 把角色指令、数据摘要与用户问题拼成一次模型调用的完整文本
func Compose(role, excerpt, question string) string {
	return fmt.Sprintf("[角色]: %s\n[数据摘要]: %s\n[用户问题]: %s", role, excerpt, question)
}

// contextBlock 先前会议脉络，没有时返回空串
func contextBlock(memory string) string {
	if strings.TrimSpace(memory) == "" {
		return ""
	}
	return fmt.Sprintf("\n【先前会议脉络】\n%s\n请在上述脉络的基础上延续讨论。\n", memory)
}

// CFO 财务长指令
func CFO(memory string) string {
	return "你是 CFO。" + contextBlock(memory) +
		"请根据数据回答问题，务必使用 Markdown 表格来呈现关键财务指标。"
}

// COO 营运长指令，附上 CFO 的最新报告
func COO(memory, cfo string) string {
	return fmt.Sprintf("你是 COO。%s参考 CFO 的报告：\n%s\n请针对营运面进行分析。", contextBlock(memory), cfo)
}

const ceoOutputRules = `
【非常重要 - 输出规则】：
1. 你的文字报告结束后，必须在最后面附上以下两个 JSON 区块。
2. 每个 JSON 各自放在独立的 ` + "```json" + ` 代码区块中。
3. 格式如下：

` + "```json" + `
{"risk_score": 0到100的整数}
` + "```" + `

` + "```json" + `
{"chart": {"type": "bar 或 line", "title": "图表标题", "labels": ["标签1", "标签2"], "data": [10, 20], "datasetLabel": "数据名称", "explanation": "图表解释"}}
` + "```"

// CEO 执行长指令：综合前两份报告并要求输出风险评分与图表 JSON
func CEO(memory, cfo, coo string) string {
	return fmt.Sprintf(`你是 CEO。%s综合 CFO 和 COO 的报告，针对问题给出战略决策。
[CFO 报告]:
%s
[COO 报告]:
%s
%s`, contextBlock(memory), cfo, coo, ceoOutputRules)
}

// FollowUps 请模型根据 CEO 结论给出三个追问建议
func FollowUps(question, ceo string) string {
	return fmt.Sprintf(`你是董事会秘书。以下是刚结束的高管会议：
[议题]: %s
[CEO 结论]:
%s

请提出三个值得继续追问的问题，只输出一个 JSON 字符串数组，并放在 `+"```json"+` 代码区块中，例如：
`+"```json"+`
["问题一", "问题二", "问题三"]
`+"```", question, ceo)
}

// Summary 追问时写入会议脉络的摘要，CEO 结论只保留前 limit 个字符
func Summary(question, ceo string, limit int) string {
	r := []rune(ceo)
	if limit > 0 && len(r) > limit {
		ceo = string(r[:limit]) + "..."
	}
	return fmt.Sprintf("[议题]: %s\n[CEO 结论]: %s\n", question, ceo)
}
