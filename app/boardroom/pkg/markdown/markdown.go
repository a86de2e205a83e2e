// Package markdown 渲染高管报告与聊天回复。
package markdown

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// TableClass 报告中表格使用的样式
const TableClass = "table table-bordered table-striped table-hover mt-2"

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML 把 Markdown 转成 HTML，并给表格加上样式。空文本返回空串。
func HTML(text string) string {
	if text == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return text
	}
	return strings.ReplaceAll(buf.String(), "<table>", `<table class="`+TableClass+`">`)
}

// Terminal 终端输出。style 为空时按终端自动选择。
func Terminal(text string, width int, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}
