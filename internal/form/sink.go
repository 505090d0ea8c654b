package form

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink 保存导出文件
type Sink interface {
	Save(name string, data []byte) (string, error)
}

// FileSink 写入本地目录
type FileSink struct {
	Dir string
}

func (s FileSink) Save(name string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ==================== 通知 ====================

// NoticeLevel 通知级别
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice 面向用户的提示
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier 展示提示，例如终端输出或前端 toast
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc 函数适配器
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
