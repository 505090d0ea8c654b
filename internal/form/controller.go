package form

import (
	"context"
	"fmt"
	"instagen/internal/model"
	"instagen/internal/service"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout 单次生成/导出的超时
const DefaultTimeout = 30 * time.Second

// Generator 生成帖子，本地 FabricatorService 与远端 APIClient 均满足
type Generator interface {
	Generate(ctx context.Context, req model.GenerationRequest) ([]model.PostRecord, error)
}

// Exporter 导出 xlsx
type Exporter interface {
	Export(ctx context.Context, records []model.PostRecord) ([]byte, error)
}

// State 表单当前状态
type State struct {
	Topic           string
	PostType        model.PostType
	PostCount       int
	SlideCount      int
	DurationSeconds int
	Records         []model.PostRecord
	Loading         bool
}

func initialState() State {
	profile := model.ProfileOf(model.PostTypePost)
	return State{
		PostType:        model.PostTypePost,
		PostCount:       model.MinPostCount,
		SlideCount:      profile.DefaultSlides,
		DurationSeconds: profile.DefaultSeconds,
	}
}

// Option 控制器配置
type Option func(*Controller)

// WithTimeout 覆盖默认超时
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithNotifier 设置提示输出
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithSink 设置导出文件的保存位置
func WithSink(s Sink) Option {
	return func(c *Controller) {
		if s != nil {
			c.sink = s
		}
	}
}

// Controller 表单状态机
// 同一时间只允许一个生成请求，后到的直接拒绝
type Controller struct {
	mu    sync.Mutex
	state State
	// epoch 每次 Clear 自增，用于丢弃过期的生成结果
	epoch uint64

	generator Generator
	exporter  Exporter
	sink      Sink
	notifier  Notifier
	timeout   time.Duration
}

func NewController(generator Generator, exporter Exporter, opts ...Option) *Controller {
	c := &Controller{
		state:     initialState(),
		generator: generator,
		exporter:  exporter,
		sink:      FileSink{Dir: "."},
		notifier:  nopNotifier{},
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ==================== 字段 ====================

func (c *Controller) SetTopic(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Topic = topic
}

// SetPostType 切换类型并重置页数与时长
func (c *Controller) SetPostType(t model.PostType) error {
	if !t.Valid() {
		return &ValidationError{Field: "postType", Err: ErrInvalidPostType}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	profile := model.ProfileOf(t)
	c.state.PostType = t
	c.state.SlideCount = profile.DefaultSlides
	c.state.DurationSeconds = profile.DefaultSeconds
	return nil
}

func (c *Controller) SetSlideCount(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !model.ProfileOf(c.state.PostType).SlidesEditable {
		return &ValidationError{Field: "slides", Err: ErrFieldInactive}
	}
	if n < model.MinSlideCount || n > model.MaxSlideCount {
		return &ValidationError{Field: "slides", Err: ErrOutOfRange}
	}
	c.state.SlideCount = n
	return nil
}

func (c *Controller) SetDuration(seconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !model.ProfileOf(c.state.PostType).SecondsEditable {
		return &ValidationError{Field: "seconds", Err: ErrFieldInactive}
	}
	if seconds < model.MinDurationSeconds || seconds > model.MaxDurationSeconds {
		return &ValidationError{Field: "seconds", Err: ErrOutOfRange}
	}
	c.state.DurationSeconds = seconds
	return nil
}

func (c *Controller) SetPostCount(n int) error {
	if n < model.MinPostCount || n > model.MaxPostCount {
		return &ValidationError{Field: "posts", Err: ErrOutOfRange}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PostCount = n
	return nil
}

// ActiveFields 当前类型下页数、时长是否可编辑
func (c *Controller) ActiveFields() (slides, seconds bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	profile := model.ProfileOf(c.state.PostType)
	return profile.SlidesEditable, profile.SecondsEditable
}

// Snapshot 返回状态副本
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Records = append([]model.PostRecord(nil), c.state.Records...)
	return s
}

// ==================== 操作 ====================

// Generate 按当前表单生成帖子，成功后整体替换结果列表
func (c *Controller) Generate(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(c.state.Topic) == "" {
		c.mu.Unlock()
		c.notify(NoticeError, ErrEmptyTopic.Error())
		return &ValidationError{Field: "topic", Err: ErrEmptyTopic}
	}

	req := model.GenerationRequest{
		Topic:           strings.TrimSpace(c.state.Topic),
		PostType:        c.state.PostType,
		PostCount:       c.state.PostCount,
		SlideCount:      c.state.SlideCount,
		DurationSeconds: c.state.DurationSeconds,
	}
	c.state.Loading = true
	epoch := c.epoch
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	records, err := c.generator.Generate(ctx, req)
	cancel()

	c.mu.Lock()
	if c.epoch != epoch {
		// Clear 保留了 Loading，由本次调用收尾
		c.state.Loading = false
		c.mu.Unlock()
		return ErrDiscarded
	}
	c.state.Loading = false
	if err == nil {
		c.state.Records = records
	}
	c.mu.Unlock()

	if err != nil {
		c.notify(NoticeError, "Error generating posts: "+err.Error())
		return &TransportError{Op: "generate", Err: err}
	}
	c.notify(NoticeInfo, fmt.Sprintf("Generated %d posts", len(records)))
	return nil
}

// Export 导出当前结果并保存为 generated_posts.xlsx，返回保存路径
func (c *Controller) Export(ctx context.Context) (string, error) {
	records := c.Snapshot().Records
	if len(records) == 0 {
		c.notify(NoticeError, ErrNoRecords.Error())
		return "", &ValidationError{Field: "records", Err: ErrNoRecords}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.exporter.Export(ctx, records)
	if err != nil {
		c.notify(NoticeError, "Error exporting to Excel: "+err.Error())
		return "", &TransportError{Op: "export", Err: err}
	}

	path, err := c.sink.Save(service.ExportFileName, data)
	if err != nil {
		c.notify(NoticeError, "Error saving export: "+err.Error())
		return "", fmt.Errorf("save export: %w", err)
	}

	c.notify(NoticeInfo, "Saved "+path)
	return path, nil
}

// Clear 恢复初始状态，进行中的生成结果会被丢弃
// Loading 不重置，进行中的请求返回前仍拒绝新的生成
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	loading := c.state.Loading
	c.epoch++
	c.state = initialState()
	c.state.Loading = loading
}

func (c *Controller) notify(level NoticeLevel, msg string) {
	c.notifier.Notify(Notice{Level: level, Message: msg})
}
