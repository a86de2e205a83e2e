package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep(t *testing.T) {
	tests := []struct {
		step     Step
		progress int
		text     string
	}{
		{StepIdle, 0, "等待指令"},
		{StepCFO, 33, "CFO 正在审计财务数据..."},
		{StepCOO, 66, "COO 正在检视供应链效率..."},
		{StepCEO, 100, "CEO 正在构建可视化战略..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.progress, tt.step.Progress())
		assert.Equal(t, tt.text, tt.step.Text())
	}
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, "success", RiskLevel(0))
	assert.Equal(t, "success", RiskLevel(39))
	assert.Equal(t, "warning", RiskLevel(40))
	assert.Equal(t, "warning", RiskLevel(74))
	assert.Equal(t, "danger", RiskLevel(75))
}

func TestReport_HasCEO(t *testing.T) {
	assert.False(t, Report{CFO: "x", COO: "y"}.HasCEO())
	assert.True(t, Report{CEO: "go"}.HasCEO())
}
