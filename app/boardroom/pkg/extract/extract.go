// Package extract 从模型生成的文字中取出内嵌的 JSON 片段，并把它们从正文中移除。
//
// 先找第一个 ```json 代码区块；完全没有代码区块时，才退回到以正则匹配裸露的
// { "key": ... } 片段。正则不做括号配对，值为多层嵌套对象时会取错范围，
// 这时解析失败，按未找到处理。
package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/model"
)

// 固定的 JSON 键
const (
	KeyRiskScore = "risk_score"
	KeyChart     = "chart"
)

// DefaultFollowUps 追问建议解析失败时使用
var DefaultFollowUps = []string{
	"这个决策的主要风险是什么？",
	"需要哪些额外数据来验证结论？",
	"下一季应该优先追踪哪些指标？",
}

var fencedRe = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")

// Extract 在 text 中寻找包含 key 的 JSON 对象。
// 找到时返回解析后的对象以及移除该片段后的文字；否则返回 nil 与原文。
func Extract(text, key string) (map[string]json.RawMessage, string) {
	if loc := fencedRe.FindStringSubmatchIndex(text); loc != nil {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text[loc[2]:loc[3]]), &obj); err != nil {
			return nil, text
		}
		if _, ok := obj[key]; !ok {
			return nil, text
		}
		return obj, text[:loc[0]] + text[loc[1]:]
	}

	loc := bareRe(key).FindStringIndex(text)
	if loc == nil {
		return nil, text
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text[loc[0]:loc[1]]), &obj); err != nil {
		return nil, text
	}
	if _, ok := obj[key]; !ok {
		return nil, text
	}
	return obj, text[:loc[0]] + text[loc[1]:]
}

// bareRe 值为一层对象或不含大括号的纯量/数组，非贪婪匹配到第一个可收尾的 }
func bareRe(key string) *regexp.Regexp {
	return regexp.MustCompile(`\{\s*"` + regexp.QuoteMeta(key) + `"\s*:\s*(?:\{[\s\S]*?\}|[^{}]*?)\s*\}`)
}

// RiskScore 解析 {"risk_score": n}，只接受整数值。
// 找到该字段但不是整数时 ok 为 false，片段照样从 cleaned 中移除，
// 这样后面的图表区块仍能被找到。
func RiskScore(text string) (score int, ok bool, cleaned string) {
	obj, rest := Extract(text, KeyRiskScore)
	if obj == nil {
		return 0, false, text
	}
	// 原始 JSON 字面量必须是整数：字符串、小数与指数写法都不接受
	n, err := strconv.Atoi(strings.TrimSpace(string(obj[KeyRiskScore])))
	if err != nil {
		return 0, false, rest
	}
	return n, true, rest
}

// Chart 解析 {"chart": {...}}，raw 为内层图表对象的原始 JSON 文字
func Chart(text string) (spec model.ChartSpec, raw string, ok bool, cleaned string) {
	obj, rest := Extract(text, KeyChart)
	if obj == nil {
		return model.ChartSpec{}, "", false, text
	}
	raw = strings.TrimSpace(string(obj[KeyChart]))
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return model.ChartSpec{}, "", false, text
	}
	return spec, raw, true, rest
}

// FollowUps 解析追问建议的 JSON 字符串数组。
// 先找 ```json 区块，否则取第一个 [ 到最后一个 ] 之间的内容；都失败时返回默认问题。
func FollowUps(text string) []string {
	candidate := ""
	if m := fencedRe.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else {
		start := strings.Index(text, "[")
		end := strings.LastIndex(text, "]")
		if start >= 0 && end > start {
			candidate = text[start : end+1]
		}
	}

	var questions []string
	if candidate != "" && json.Unmarshal([]byte(candidate), &questions) == nil {
		out := make([]string, 0, 3)
		for _, q := range questions {
			if q = strings.TrimSpace(q); q != "" {
				out = append(out, q)
			}
			if len(out) == 3 {
				break
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return append([]string(nil), DefaultFollowUps...)
}
