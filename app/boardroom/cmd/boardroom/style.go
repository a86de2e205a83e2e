package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/markdown"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	stepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	riskStyles = map[string]lipgloss.Style{
		"success": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		"warning": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		"danger":  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
)

// progressLine 形如 [■■■□□□□□□□] 33% CFO 正在审计财务数据...
func progressLine(step model.Step) string {
	filled := step.Progress() / 10
	bar := strings.Repeat("■", filled) + strings.Repeat("□", 10-filled)
	return stepStyle.Render(fmt.Sprintf("[%s] %3d%% %s", bar, step.Progress(), step.Text()))
}

func riskLine(score int) string {
	level := model.RiskLevel(score)
	return "风险评分 " + riskStyles[level].Render(fmt.Sprintf("%d", score))
}

// printMarkdown 渲染失败时直接输出原文
func printMarkdown(title, text string) {
	fmt.Println(titleStyle.Render(title))
	out, err := markdown.Terminal(text, 100, "")
	if err != nil {
		fmt.Println(text)
		return
	}
	fmt.Print(out)
}
