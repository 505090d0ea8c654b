package form

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTopic 主题为空或全空白
	ErrEmptyTopic = errors.New("please enter a topic")
	// ErrNoRecords 没有可导出的帖子
	ErrNoRecords = errors.New("no posts to export")
	// ErrOutOfRange 数值超出允许范围
	ErrOutOfRange = errors.New("value out of range")
	// ErrFieldInactive 当前类型下该字段不可编辑
	ErrFieldInactive = errors.New("field is not active for the current post type")
	// ErrInvalidPostType 未知的帖子类型
	ErrInvalidPostType = errors.New("invalid post type")
	// ErrBusy 已有生成请求在处理中
	ErrBusy = errors.New("a generation request is already in progress")
	// ErrDiscarded 生成期间表单被清空，结果丢弃
	ErrDiscarded = errors.New("form was cleared while generating")
)

// ValidationError 本地校验失败，不会发起任何调用
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransportError 生成/导出调用失败
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
