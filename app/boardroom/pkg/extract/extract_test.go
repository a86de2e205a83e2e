package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioCEO = "Decision: expand.\n```json\n{\"risk_score\": 72}\n```\n```json\n{\"chart\":{\"type\":\"bar\",\"title\":\"Q\",\"labels\":[\"A\",\"B\"],\"data\":[1,2],\"datasetLabel\":\"X\",\"explanation\":\"Y\"}}\n```"

func TestExtract_FencedBlock(t *testing.T) {
	text := "前言\n```json\n{\"risk_score\": 30, \"note\": \"ok\"}\n```\n结语"

	obj, cleaned := Extract(text, KeyRiskScore)
	require.NotNil(t, obj)
	assert.JSONEq(t, `30`, string(obj[KeyRiskScore]))
	assert.JSONEq(t, `"ok"`, string(obj["note"]))
	assert.Equal(t, "前言\n\n结语", cleaned)
}

func TestExtract_FencedBlockWithoutKey(t *testing.T) {
	// 只看第一个代码区块
	text := "```json\n{\"chart\": {}}\n```\n```json\n{\"risk_score\": 10}\n```"

	obj, cleaned := Extract(text, KeyRiskScore)
	assert.Nil(t, obj)
	assert.Equal(t, text, cleaned)
}

func TestExtract_FallbackRegex(t *testing.T) {
	text := `结论如下。 { "risk_score": 55 } 以上。`

	obj, cleaned := Extract(text, KeyRiskScore)
	require.NotNil(t, obj)
	assert.JSONEq(t, `55`, string(obj[KeyRiskScore]))
	assert.Equal(t, "结论如下。  以上。", cleaned)
}

func TestExtract_FallbackFlatObject(t *testing.T) {
	text := "报告。\n{ \"chart\": { \"type\": \"line\", \"labels\": [\"Q1\",\"Q2\"], \"data\": [3, 4] } }\n完"

	obj, cleaned := Extract(text, KeyChart)
	require.NotNil(t, obj)
	assert.Contains(t, string(obj[KeyChart]), `"line"`)
	assert.Equal(t, "报告。\n\n完", cleaned)
}

func TestExtract_FallbackNestedBracesNotBalanced(t *testing.T) {
	// 内层对象以嵌套对象结尾时，非贪婪匹配在第一个 }} 处截断
	text := `{"chart": {"type": "bar", "meta": {"k": 1}}}`

	obj, cleaned := Extract(text, KeyChart)
	assert.Nil(t, obj)
	assert.Equal(t, text, cleaned)
}

func TestExtract_NothingFoundLeavesTextIdentical(t *testing.T) {
	texts := []string{
		"",
		"纯文字，没有任何 JSON。",
		"```json\n{not json}\n```",
		`{"other": 1}`,
		`{ "risk_score": oops }`,
	}
	for _, text := range texts {
		obj, cleaned := Extract(text, KeyRiskScore)
		assert.Nil(t, obj, text)
		assert.Equal(t, text, cleaned)
	}
}

func TestExtract_ParsedValueUnchanged(t *testing.T) {
	payload := map[string]any{"chart": map[string]any{"type": "line", "data": []any{1.5, 2.0}}}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	text := "前\n```json\n" + string(raw) + "\n```\n后"

	obj, cleaned := Extract(text, KeyChart)
	require.NotNil(t, obj)
	assert.JSONEq(t, `{"type":"line","data":[1.5,2]}`, string(obj[KeyChart]))
	assert.Equal(t, "前\n\n后", cleaned)
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		score   int
		ok      bool
		cleaned string
	}{
		{"fenced integer", "前\n```json\n{\"risk_score\": 72}\n```", 72, true, "前\n"},
		{"bare integer", `{"risk_score": 5}`, 5, true, ""},
		{"negative kept", `{"risk_score": -3}`, -3, true, ""},
		{"decimal rejected", "前\n```json\n{\"risk_score\": 72.5}\n```", 0, false, "前\n"},
		{"string rejected", `{"risk_score": "72"}`, 0, false, ""},
		{"exponent rejected", `{"risk_score": 7e1}`, 0, false, ""},
		{"absent", `没有评分`, 0, false, `没有评分`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok, cleaned := RiskScore(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.cleaned, cleaned)
		})
	}
}

func TestChart(t *testing.T) {
	spec, raw, ok, cleaned := Chart("正文\n```json\n{\"chart\": {\"type\": \"line\", \"title\": \"营收\", \"labels\": [\"1月\", \"2月\"], \"data\": [10, 12.5]}}\n```")
	require.True(t, ok)
	assert.Equal(t, "line", spec.Type)
	assert.Equal(t, "营收", spec.Title)
	assert.Equal(t, []string{"1月", "2月"}, spec.Labels)
	assert.Equal(t, []float64{10, 12.5}, spec.Data)
	assert.JSONEq(t, `{"type": "line", "title": "营收", "labels": ["1月", "2月"], "data": [10, 12.5]}`, raw)
	assert.Equal(t, "正文\n", cleaned)
}

func TestChart_BadShapeLeavesText(t *testing.T) {
	text := "```json\n{\"chart\": {\"data\": \"lots\"}}\n```"
	_, raw, ok, cleaned := Chart(text)
	assert.False(t, ok)
	assert.Empty(t, raw)
	assert.Equal(t, text, cleaned)
}

func TestScenario_CEOResponse(t *testing.T) {
	score, ok, text := RiskScore(scenarioCEO)
	require.True(t, ok)
	assert.Equal(t, 72, score)

	spec, _, ok, text := Chart(text)
	require.True(t, ok)
	assert.Equal(t, "bar", spec.Type)
	assert.Equal(t, []string{"A", "B"}, spec.Labels)
	assert.Equal(t, []float64{1, 2}, spec.Data)
	assert.Equal(t, "X", spec.DatasetLabel)
	assert.Equal(t, "Y", spec.Explanation)

	assert.Equal(t, "Decision: expand.\n\n", text)
}

func TestFollowUps(t *testing.T) {
	t.Run("fenced", func(t *testing.T) {
		got := FollowUps("建议：\n```json\n[\"现金流？\", \"库存？\", \"人力？\", \"多余\"]\n```")
		assert.Equal(t, []string{"现金流？", "库存？", "人力？"}, got)
	})
	t.Run("loose substring", func(t *testing.T) {
		got := FollowUps(`好的 ["A 问题", "B 问题"] 谢谢`)
		assert.Equal(t, []string{"A 问题", "B 问题"}, got)
	})
	t.Run("unparsable falls back to defaults", func(t *testing.T) {
		got := FollowUps("以下是建议 [一, 二, 三] 完毕")
		assert.Equal(t, DefaultFollowUps, got)
		assert.Len(t, got, 3)
	})
	t.Run("no array at all", func(t *testing.T) {
		assert.Equal(t, DefaultFollowUps, FollowUps("无回应"))
	})
	t.Run("defaults are copies", func(t *testing.T) {
		got := FollowUps("")
		got[0] = "changed"
		assert.NotEqual(t, "changed", DefaultFollowUps[0])
	})
}
