package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML_Table(t *testing.T) {
	src := "## 指标\n\n| 项目 | 数值 |\n| --- | --- |\n| 营收 | 100 |\n"

	got := HTML(src)
	assert.Contains(t, got, `<table class="table table-bordered table-striped table-hover mt-2">`)
	assert.Contains(t, got, "<td>营收</td>")
	assert.Contains(t, got, "<h2>指标</h2>")
	assert.NotContains(t, got, "<table>")
}

func TestHTML_Empty(t *testing.T) {
	assert.Equal(t, "", HTML(""))
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("**结论**：扩张", 80, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "结论")
}
