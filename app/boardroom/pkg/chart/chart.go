// Package chart 把 CEO 给出的图表定义渲染成 SVG。
//
// 渲染结果按 target 存放在内存画布上，调用方通过 Surface 取回。
// Display 负责"当前"图表：同一时间只保留一个实时图表，替换前先销毁旧的；
// 历史图表各占一个 target，不会被销毁。
package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/model"
)

// LiveTarget 实时图表的画布名称
const LiveTarget = "dynamicChart"

// HistoryTarget 第 index 份历史记录的画布名称
func HistoryTarget(index int) string {
	return fmt.Sprintf("historyChart-%d", index)
}

// Variant 渲染风格
type Variant int

const (
	VariantLive Variant = iota
	VariantHistorical
)

// ErrInvalidSpec 图表定义不完整
var ErrInvalidSpec = errors.New("invalid chart spec")

// Handle 一次渲染的句柄
type Handle struct {
	ID     string
	Target string
}

// Renderer 图表渲染能力，方便替换后端与测试
type Renderer interface {
	Render(target string, spec model.ChartSpec, variant Variant) (Handle, error)
	Dispose(h Handle) error
	Surface(target string) ([]byte, bool)
}

var (
	livePalette = []drawing.Color{
		{R: 255, G: 99, B: 132, A: 153},
		{R: 54, G: 162, B: 235, A: 153},
		{R: 255, G: 206, B: 86, A: 153},
		{R: 75, G: 192, B: 192, A: 153},
		{R: 153, G: 102, B: 255, A: 153},
	}
	mutedColor  = drawing.Color{R: 108, G: 117, B: 125, A: 153}
	borderColor = drawing.Color{R: 13, G: 110, B: 253, A: 255}
	lineFill    = drawing.Color{R: 13, G: 110, B: 253, A: 26}
)

// Parse 解析原始图表 JSON 并检查必要字段
func Parse(raw string) (model.ChartSpec, error) {
	var spec model.ChartSpec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return model.ChartSpec{}, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if err := Validate(spec); err != nil {
		return model.ChartSpec{}, err
	}
	return spec, nil
}

// Validate 检查图表定义能否渲染
func Validate(spec model.ChartSpec) error {
	if len(spec.Data) == 0 {
		return fmt.Errorf("%w: no data", ErrInvalidSpec)
	}
	if len(spec.Labels) == 0 {
		return fmt.Errorf("%w: no labels", ErrInvalidSpec)
	}
	switch spec.Type {
	case "", "bar", "line":
	default:
		return fmt.Errorf("%w: unsupported type %q", ErrInvalidSpec, spec.Type)
	}
	return nil
}

// SVGRenderer 基于 go-chart 的渲染器
type SVGRenderer struct {
	width  int
	height int

	mu       sync.RWMutex
	surfaces map[string]surface
}

type surface struct {
	handleID string
	svg      []byte
}

// NewSVGRenderer 创建渲染器
func NewSVGRenderer(width, height int) *SVGRenderer {
	return &SVGRenderer{
		width:    width,
		height:   height,
		surfaces: make(map[string]surface),
	}
}

var _ Renderer = (*SVGRenderer)(nil)

// Render 渲染到 target。失败时画布保持原状。
func (r *SVGRenderer) Render(target string, spec model.ChartSpec, variant Variant) (Handle, error) {
	if err := Validate(spec); err != nil {
		return Handle{}, err
	}

	var buf bytes.Buffer
	var err error
	if spec.Type == "line" {
		err = r.lineChart(spec, variant).Render(chart.SVG, &buf)
	} else {
		err = r.barChart(spec, variant).Render(chart.SVG, &buf)
	}
	if err != nil {
		return Handle{}, fmt.Errorf("render %s chart: %w", target, err)
	}

	h := Handle{ID: uuid.NewString(), Target: target}
	r.mu.Lock()
	r.surfaces[target] = surface{handleID: h.ID, svg: buf.Bytes()}
	r.mu.Unlock()
	return h, nil
}

// Dispose 清除句柄对应的画布；画布已被新句柄占用时不做处理
func (r *SVGRenderer) Dispose(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.surfaces[h.Target]; ok && s.handleID == h.ID {
		delete(r.surfaces, h.Target)
	}
	return nil
}

// Surface 取回 target 上的 SVG
func (r *SVGRenderer) Surface(target string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[target]
	if !ok {
		return nil, false
	}
	return bytes.Clone(s.svg), true
}

func barColor(i int, variant Variant) drawing.Color {
	if variant == VariantHistorical {
		return mutedColor
	}
	return livePalette[i%len(livePalette)]
}

func title(spec model.ChartSpec) string {
	if spec.Title == "" {
		return "分析图表"
	}
	return spec.Title
}

func (r *SVGRenderer) barChart(spec model.ChartSpec, variant Variant) chart.BarChart {
	bars := make([]chart.Value, len(spec.Data))
	for i, v := range spec.Data {
		label := ""
		if i < len(spec.Labels) {
			label = spec.Labels[i]
		}
		c := barColor(i, variant)
		bars[i] = chart.Value{
			Value: v,
			Label: label,
			Style: chart.Style{FillColor: c, StrokeColor: borderColor, StrokeWidth: 2},
		}
	}
	return chart.BarChart{
		Title:      title(spec),
		Width:      r.width,
		Height:     r.height,
		BarWidth:   40,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
}

func (r *SVGRenderer) lineChart(spec model.ChartSpec, variant Variant) chart.Chart {
	xs := make([]float64, len(spec.Data))
	ticks := make([]chart.Tick, len(spec.Data))
	for i := range spec.Data {
		xs[i] = float64(i)
		label := ""
		if i < len(spec.Labels) {
			label = spec.Labels[i]
		}
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	stroke := borderColor
	if variant == VariantHistorical {
		stroke = mutedColor
	}
	name := spec.DatasetLabel
	if name == "" {
		name = "数值"
	}

	ch := chart.Chart{
		Title:      title(spec),
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		XAxis:      chart.XAxis{Ticks: ticks},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    name,
				XValues: xs,
				YValues: append([]float64(nil), spec.Data...),
				// 折线图不论实时或历史都使用半透明填充
				Style: chart.Style{StrokeColor: stroke, StrokeWidth: 2, FillColor: lineFill},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}
