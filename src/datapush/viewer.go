package datapush

import (
	"MissionLaunches/src/storage"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/browser"
)

// Pusher 把生成的报表交给用户查看
type Pusher interface {
	Push(path string) error
}

// BrowserPusher 用系统默认浏览器/查看器打开文件
type BrowserPusher struct {
	open   func(string) error
	logger *storage.Logger
}

// NewBrowserPusher 创建浏览器推送器，浏览器自身的输出被丢弃
func NewBrowserPusher(logger *storage.Logger) *BrowserPusher {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &BrowserPusher{open: browser.OpenFile, logger: logger}
}

// Push 打开一个报表文件
func (p *BrowserPusher) Push(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("artifact %s: %w", abs, err)
	}

	if err := p.open(abs); err != nil {
		return fmt.Errorf("open %s: %w", abs, err)
	}
	p.logger.Debug("已打开 " + abs)
	return nil
}

// NopPusher 不做任何事，open_viewer 关闭时使用
type NopPusher struct{}

func (NopPusher) Push(string) error { return nil }

// PushAll 依次推送，单个失败只记录警告
func PushAll(p Pusher, paths []string, logger *storage.Logger) int {
	pushed := 0
	for _, path := range paths {
		if err := p.Push(path); err != nil {
			logger.Warning(fmt.Sprintf("推送报表失败: %v", err))
			continue
		}
		pushed++
	}
	return pushed
}
