// Package excerpt 把上传的数据文件变成固定长度的数据摘要。
package excerpt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/logger"
)

// ErrEmpty 文件没有任何内容
var ErrEmpty = errors.New("data file is empty")

// Excerpt 截断后的数据摘要
type Excerpt struct {
	Name      string
	Text      string
	Truncated bool
}

// Load 读取整个文件后保留前 budget 个字符。HTML 文件先提取正文。
func Load(name string, r io.Reader, budget int) (*Excerpt, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmpty
	}

	text := string(raw)
	if isHTML(name, raw) {
		text = readableText(name, raw)
	}

	out, truncated := Truncate(text, budget)
	if truncated {
		logger.Log.Infof("数据文件 [%s] 超出 %d 字，已截断", name, budget)
	}
	return &Excerpt{Name: name, Text: out, Truncated: truncated}, nil
}

// Truncate 按字符截断，budget <= 0 表示不限制
func Truncate(text string, budget int) (string, bool) {
	if budget <= 0 {
		return text, false
	}
	r := []rune(text)
	if len(r) <= budget {
		return text, false
	}
	return string(r[:budget]), true
}

func isHTML(name string, raw []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	case ".csv", ".txt", ".tsv", ".json":
		return false
	}
	return strings.HasPrefix(http.DetectContentType(raw), "text/html")
}

// readableText 提取失败时退回原文
func readableText(name string, raw []byte) string {
	article, err := readability.FromReader(bytes.NewReader(raw), &url.URL{Scheme: "file", Path: "/" + name})
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		logger.Log.Warnf("HTML 正文提取失败 [%s]，使用原文: %v", name, err)
		return string(raw)
	}
	return strings.TrimSpace(article.TextContent)
}
