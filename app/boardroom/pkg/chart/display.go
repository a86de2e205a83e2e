package chart

import (
	"sync"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/logger"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/model"
)

// Display 持有唯一的实时图表句柄
type Display struct {
	renderer Renderer

	mu      sync.Mutex
	live    *Handle
	history map[int]Handle
}

// NewDisplay 创建 Display
func NewDisplay(renderer Renderer) *Display {
	return &Display{renderer: renderer, history: make(map[int]Handle)}
}

// Renderer 底层渲染器
func (d *Display) Renderer() Renderer {
	return d.renderer
}

// ShowLive 销毁旧的实时图表后渲染新图表。失败时画面处于"无图表"状态。
func (d *Display) ShowLive(spec model.ChartSpec) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clearLocked()
	h, err := d.renderer.Render(LiveTarget, spec, VariantLive)
	if err != nil {
		logger.Log.Errorf("图表渲染失败: %v", err)
		return false
	}
	d.live = &h
	return true
}

// ClearLive 销毁当前实时图表
func (d *Display) ClearLive() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
}

func (d *Display) clearLocked() {
	if d.live == nil {
		return
	}
	if err := d.renderer.Dispose(*d.live); err != nil {
		logger.Log.Warnf("销毁旧图表失败: %v", err)
	}
	d.live = nil
}

// ShowHistory 把归档时的原始图表 JSON 渲染到第 index 份历史记录的画布
func (d *Display) ShowHistory(index int, raw string) bool {
	spec, err := Parse(raw)
	if err != nil {
		logger.Log.Warnf("历史图表 #%d 无法解析: %v", index, err)
		return false
	}
	h, err := d.renderer.Render(HistoryTarget(index), spec, VariantHistorical)
	if err != nil {
		logger.Log.Errorf("历史图表 #%d 渲染失败: %v", index, err)
		return false
	}
	d.mu.Lock()
	d.history[index] = h
	d.mu.Unlock()
	return true
}

// Reset 整个会话重置时清空全部画布
func (d *Display) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
	for i, h := range d.history {
		if err := d.renderer.Dispose(h); err != nil {
			logger.Log.Warnf("销毁历史图表 #%d 失败: %v", i, err)
		}
	}
	d.history = make(map[int]Handle)
}

// HasLive 是否有实时图表
func (d *Display) HasLive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live != nil
}
