// Package report 把一次会话导出成独立的 HTML 页面。
package report

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/chart"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/markdown"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/model"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/session"
)

// SurfaceSource 取回已渲染的图表
type SurfaceSource interface {
	Surface(target string) ([]byte, bool)
}

type section struct {
	Title string
	Body  template.HTML
}

type historyView struct {
	Index     int
	Query     string
	RiskScore int
	RiskLevel string
	CEO       template.HTML
	Chart     template.HTML
	CreatedAt string
}

type pageView struct {
	GeneratedAt      string
	FileName         string
	Query            string
	RiskScore        int
	RiskLevel        string
	Sections         []section
	Chart            template.HTML
	ChartExplanation string
	Suggestions      []string
	Histories        []historyView
}

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>高管会议报告 - {{.Query}}</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
</head>
<body class="container py-4">
<h1 class="h3">高管会议报告</h1>
<p class="text-muted">生成时间 {{.GeneratedAt}}{{if .FileName}} · 数据文件 {{.FileName}}{{end}}</p>
{{if .Query}}<h2 class="h5">议题：{{.Query}}</h2>{{end}}
<div class="mb-3">风险评分 <span class="badge bg-{{.RiskLevel}}">{{.RiskScore}}</span></div>
{{range .Sections}}<section class="card mb-3"><div class="card-header">{{.Title}}</div><div class="card-body">{{.Body}}</div></section>
{{end}}
{{if .Chart}}<section class="card mb-3"><div class="card-body">{{.Chart}}<p class="mt-2">{{.ChartExplanation}}</p></div></section>{{end}}
{{if .Suggestions}}<h3 class="h6">建议追问</h3><ul>{{range .Suggestions}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Histories}}<h3 class="h6 mt-4">历史会议</h3>
{{range .Histories}}<details class="mb-2"><summary>#{{.Index}} {{.Query}} <span class="badge bg-{{.RiskLevel}}">{{.RiskScore}}</span> {{.CreatedAt}}</summary>{{.CEO}}{{.Chart}}</details>
{{end}}{{end}}
</body>
</html>
`))

// Render 写出报告页面。图表从 surfaces 取回，没有渲染过的图表不显示。
func Render(w io.Writer, snap session.Snapshot, surfaces SurfaceSource, now time.Time) error {
	view := pageView{
		GeneratedAt:      now.Format(time.DateTime),
		FileName:         snap.FileName,
		Query:            snap.Query,
		RiskScore:        snap.RiskScore,
		RiskLevel:        snap.RiskLevel,
		ChartExplanation: snap.ChartExplanation,
		Suggestions:      snap.SuggestedQuestions,
	}
	for _, s := range []struct {
		role model.Role
		text string
	}{
		{model.RoleCFO, snap.Reports.CFO},
		{model.RoleCOO, snap.Reports.COO},
		{model.RoleCEO, snap.Reports.CEO},
	} {
		if s.text == "" {
			continue
		}
		view.Sections = append(view.Sections, section{Title: roleTitle(s.role), Body: template.HTML(markdown.HTML(s.text))})
	}
	if snap.HasChart {
		view.Chart = svg(surfaces, chart.LiveTarget)
	}
	for i, h := range snap.Histories {
		view.Histories = append(view.Histories, historyView{
			Index:     i + 1,
			Query:     h.Query,
			RiskScore: h.RiskScore,
			RiskLevel: model.RiskLevel(h.RiskScore),
			CEO:       template.HTML(markdown.HTML(h.Reports.CEO)),
			Chart:     svg(surfaces, chart.HistoryTarget(i)),
			CreatedAt: h.CreatedAt.Format(time.DateTime),
		})
	}

	if err := page.Execute(w, view); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func svg(surfaces SurfaceSource, target string) template.HTML {
	if surfaces == nil {
		return ""
	}
	b, ok := surfaces.Surface(target)
	if !ok {
		return ""
	}
	return template.HTML(b)
}

func roleTitle(r model.Role) string {
	switch r {
	case model.RoleCFO:
		return "CFO 财务分析"
	case model.RoleCOO:
		return "COO 营运分析"
	default:
		return "CEO 战略决策"
	}
}
