package form

import (
	"context"
	"errors"
	"instagen/internal/model"
	"instagen/internal/service"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ==================== fakes ====================

type fakeGenerator struct {
	mu      sync.Mutex
	calls   []model.GenerationRequest
	records []model.PostRecord
	err     error
	// block 非空时等待关闭或 ctx 结束
	block   chan struct{}
	entered chan struct{}
}

func (g *fakeGenerator) Generate(ctx context.Context, req model.GenerationRequest) ([]model.PostRecord, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.mu.Unlock()

	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.records, g.err
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fakeExporter struct {
	data  []byte
	err   error
	calls int
}

func (e *fakeExporter) Export(_ context.Context, records []model.PostRecord) ([]byte, error) {
	e.calls++
	return e.data, e.err
}

type memSink struct {
	saved map[string][]byte
	err   error
}

func (s *memSink) Save(name string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[name] = data
	return "mem/" + name, nil
}

type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

func sampleRecords(n int) []model.PostRecord {
	out := make([]model.PostRecord, n)
	for i := range out {
		out[i] = model.PostRecord{
			Index:        i + 1,
			PostType:     model.PostTypePost,
			HeadlineCopy: []string{"line"},
			Hashtags:     []string{"#a"},
			Caption:      "caption",
		}
	}
	return out
}

// ==================== 字段状态 ====================

func TestController_Defaults(t *testing.T) {
	c := NewController(&fakeGenerator{}, &fakeExporter{})
	s := c.Snapshot()

	assert.Equal(t, "", s.Topic)
	assert.Equal(t, model.PostTypePost, s.PostType)
	assert.Equal(t, 1, s.PostCount)
	assert.Equal(t, 1, s.SlideCount)
	assert.Equal(t, 15, s.DurationSeconds)
	assert.Empty(t, s.Records)
	assert.False(t, s.Loading)

	slides, seconds := c.ActiveFields()
	assert.False(t, slides)
	assert.False(t, seconds)
}

func TestController_SetPostType(t *testing.T) {
	tests := []struct {
		name        string
		postType    model.PostType
		wantSlides  int
		wantSeconds int
		slidesOn    bool
		secondsOn   bool
	}{
		{"Post", model.PostTypePost, 1, 15, false, false},
		{"Carousel", model.PostTypeCarousel, 7, 15, true, false},
		{"Reel", model.PostTypeReel, 1, 15, false, true},
		{"Mixed", model.PostTypeMixed, 7, 15, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(&fakeGenerator{}, &fakeExporter{})
			c.SetTopic("coffee")
			require.NoError(t, c.SetPostCount(4))
			require.NoError(t, c.SetPostType(model.PostTypeMixed))
			require.NoError(t, c.SetSlideCount(12))
			require.NoError(t, c.SetDuration(60))

			require.NoError(t, c.SetPostType(tt.postType))
			s := c.Snapshot()
			assert.Equal(t, tt.wantSlides, s.SlideCount)
			assert.Equal(t, tt.wantSeconds, s.DurationSeconds)
			assert.Equal(t, "coffee", s.Topic, "切换类型不影响主题")
			assert.Equal(t, 4, s.PostCount, "切换类型不影响数量")

			slides, seconds := c.ActiveFields()
			assert.Equal(t, tt.slidesOn, slides)
			assert.Equal(t, tt.secondsOn, seconds)
		})
	}

	c := NewController(&fakeGenerator{}, &fakeExporter{})
	assert.ErrorIs(t, c.SetPostType(model.PostType(99)), ErrInvalidPostType)
}

func TestController_FieldValidation(t *testing.T) {
	c := NewController(&fakeGenerator{}, &fakeExporter{})

	// Post 下页数与时长都不可编辑
	assert.ErrorIs(t, c.SetSlideCount(3), ErrFieldInactive)
	assert.ErrorIs(t, c.SetDuration(30), ErrFieldInactive)

	require.NoError(t, c.SetPostType(model.PostTypeCarousel))
	assert.ErrorIs(t, c.SetSlideCount(0), ErrOutOfRange)
	assert.ErrorIs(t, c.SetSlideCount(16), ErrOutOfRange)
	assert.NoError(t, c.SetSlideCount(15))
	assert.ErrorIs(t, c.SetDuration(30), ErrFieldInactive)

	require.NoError(t, c.SetPostType(model.PostTypeReel))
	assert.ErrorIs(t, c.SetSlideCount(3), ErrFieldInactive)
	assert.ErrorIs(t, c.SetDuration(4), ErrOutOfRange)
	assert.ErrorIs(t, c.SetDuration(91), ErrOutOfRange)
	assert.NoError(t, c.SetDuration(5))
	assert.Equal(t, 5, c.Snapshot().DurationSeconds)

	assert.ErrorIs(t, c.SetPostCount(0), ErrOutOfRange)
	assert.ErrorIs(t, c.SetPostCount(31), ErrOutOfRange)
	assert.NoError(t, c.SetPostCount(30))

	var ve *ValidationError
	err := c.SetPostCount(-1)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "posts", ve.Field)
}

// ==================== 生成 ====================

func TestController_GenerateEmptyTopic(t *testing.T) {
	gen := &fakeGenerator{}
	notes := &recorder{}
	c := NewController(gen, &fakeExporter{}, WithNotifier(notes))

	for _, topic := range []string{"", "   ", "\t\n"} {
		c.SetTopic(topic)
		err := c.Generate(context.Background())
		assert.ErrorIs(t, err, ErrEmptyTopic)
	}

	assert.Equal(t, 0, gen.callCount(), "校验失败不应发起调用")
	assert.Equal(t, NoticeError, notes.last().Level)
	assert.False(t, c.Snapshot().Loading)
}

func TestController_GenerateSuccess(t *testing.T) {
	gen := &fakeGenerator{records: sampleRecords(3)}
	notes := &recorder{}
	c := NewController(gen, &fakeExporter{}, WithNotifier(notes))

	c.SetTopic("  fitness  ")
	require.NoError(t, c.SetPostType(model.PostTypeReel))
	require.NoError(t, c.SetPostCount(3))
	require.NoError(t, c.SetDuration(20))

	require.NoError(t, c.Generate(context.Background()))

	require.Len(t, gen.calls, 1)
	assert.Equal(t, model.GenerationRequest{
		Topic:           "fitness",
		PostType:        model.PostTypeReel,
		PostCount:       3,
		SlideCount:      1,
		DurationSeconds: 20,
	}, gen.calls[0])

	s := c.Snapshot()
	assert.Len(t, s.Records, 3)
	assert.False(t, s.Loading)
	assert.Equal(t, NoticeInfo, notes.last().Level)

	// 再次生成整体替换
	gen.records = sampleRecords(1)
	require.NoError(t, c.Generate(context.Background()))
	assert.Len(t, c.Snapshot().Records, 1)
}

func TestController_GenerateFailureKeepsRecords(t *testing.T) {
	gen := &fakeGenerator{records: sampleRecords(2)}
	notes := &recorder{}
	c := NewController(gen, &fakeExporter{}, WithNotifier(notes))
	c.SetTopic("x")
	require.NoError(t, c.Generate(context.Background()))

	boom := errors.New("connection refused")
	gen.err = boom
	gen.records = nil
	err := c.Generate(context.Background())

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "generate", te.Op)
	assert.ErrorIs(t, err, boom)

	s := c.Snapshot()
	assert.Len(t, s.Records, 2, "失败时不修改已有结果")
	assert.False(t, s.Loading)
	assert.Equal(t, NoticeError, notes.last().Level)
	assert.Contains(t, notes.last().Message, "connection refused")
}

func TestController_GenerateBusy(t *testing.T) {
	gen := &fakeGenerator{
		records: sampleRecords(1),
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	c := NewController(gen, &fakeExporter{})
	c.SetTopic("x")

	done := make(chan error, 1)
	go func() { done <- c.Generate(context.Background()) }()
	<-gen.entered

	assert.True(t, c.Snapshot().Loading)
	assert.ErrorIs(t, c.Generate(context.Background()), ErrBusy)
	assert.Equal(t, 1, gen.callCount(), "第二次请求直接拒绝，不排队")

	close(gen.block)
	require.NoError(t, <-done)
	assert.False(t, c.Snapshot().Loading)
	assert.Len(t, c.Snapshot().Records, 1)
}

func TestController_GenerateTimeout(t *testing.T) {
	gen := &fakeGenerator{block: make(chan struct{})}
	c := NewController(gen, &fakeExporter{}, WithTimeout(20*time.Millisecond))
	c.SetTopic("x")

	err := c.Generate(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, c.Snapshot().Loading)
}

func TestController_ClearDiscardsPendingResult(t *testing.T) {
	gen := &fakeGenerator{
		records: sampleRecords(5),
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	c := NewController(gen, &fakeExporter{})
	c.SetTopic("x")
	require.NoError(t, c.SetPostType(model.PostTypeCarousel))

	done := make(chan error, 1)
	go func() { done <- c.Generate(context.Background()) }()
	<-gen.entered

	c.Clear()
	assert.True(t, c.Snapshot().Loading, "清空不结束进行中的请求")

	// 旧请求未返回前仍只允许一个在途
	c.SetTopic("y")
	assert.ErrorIs(t, c.Generate(context.Background()), ErrBusy)
	assert.Equal(t, 1, gen.callCount())

	close(gen.block)
	assert.ErrorIs(t, <-done, ErrDiscarded)

	s := c.Snapshot()
	assert.Empty(t, s.Records)
	assert.False(t, s.Loading)
	assert.Equal(t, model.PostTypePost, s.PostType)
	assert.Equal(t, "y", s.Topic, "清空后的输入保留")

	// 旧请求结束后可再次生成
	gen.block = nil
	require.NoError(t, c.Generate(context.Background()))
	assert.Equal(t, 2, gen.callCount())
	assert.Len(t, c.Snapshot().Records, 5)
}

func TestController_Clear(t *testing.T) {
	gen := &fakeGenerator{records: sampleRecords(2)}
	c := NewController(gen, &fakeExporter{})
	c.SetTopic("x")
	require.NoError(t, c.SetPostType(model.PostTypeMixed))
	require.NoError(t, c.SetSlideCount(3))
	require.NoError(t, c.SetPostCount(9))
	require.NoError(t, c.Generate(context.Background()))

	c.Clear()
	assert.Equal(t, initialState(), c.Snapshot())
}

// ==================== 导出 ====================

func TestController_Export(t *testing.T) {
	t.Run("无结果", func(t *testing.T) {
		exp := &fakeExporter{}
		notes := &recorder{}
		c := NewController(&fakeGenerator{}, exp, WithNotifier(notes))

		_, err := c.Export(context.Background())
		assert.ErrorIs(t, err, ErrNoRecords)
		assert.Equal(t, 0, exp.calls)
		assert.Equal(t, NoticeError, notes.last().Level)
	})

	t.Run("成功", func(t *testing.T) {
		exp := &fakeExporter{data: []byte("xlsx")}
		sink := &memSink{}
		notes := &recorder{}
		c := NewController(&fakeGenerator{records: sampleRecords(2)}, exp, WithSink(sink), WithNotifier(notes))
		c.SetTopic("x")
		require.NoError(t, c.Generate(context.Background()))

		path, err := c.Export(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "mem/"+service.ExportFileName, path)
		assert.Equal(t, []byte("xlsx"), sink.saved[service.ExportFileName])
		assert.Equal(t, NoticeInfo, notes.last().Level)
	})

	t.Run("导出失败", func(t *testing.T) {
		exp := &fakeExporter{err: errors.New("500")}
		c := NewController(&fakeGenerator{records: sampleRecords(1)}, exp, WithSink(&memSink{}))
		c.SetTopic("x")
		require.NoError(t, c.Generate(context.Background()))

		_, err := c.Export(context.Background())
		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "export", te.Op)
		assert.Len(t, c.Snapshot().Records, 1)
	})

	t.Run("保存失败", func(t *testing.T) {
		c := NewController(&fakeGenerator{records: sampleRecords(1)}, &fakeExporter{data: []byte("x")},
			WithSink(&memSink{err: errors.New("disk full")}))
		c.SetTopic("x")
		require.NoError(t, c.Generate(context.Background()))

		_, err := c.Export(context.Background())
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestFileSink_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := FileSink{Dir: dir}.Save(service.ExportFileName, []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, service.ExportFileName), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestController_WithRealServices(t *testing.T) {
	stats := service.NewStats()
	sink := &memSink{}
	fabricator, err := service.NewFabricatorService(service.WithSeed(7, 7), service.WithStats(stats))
	require.NoError(t, err)
	c := NewController(
		fabricator,
		service.NewExportService(stats),
		WithSink(sink),
	)
	c.SetTopic("coffee")
	require.NoError(t, c.SetPostType(model.PostTypeReel))
	require.NoError(t, c.SetPostCount(2))

	require.NoError(t, c.Generate(context.Background()))
	records := c.Snapshot().Records
	require.Len(t, records, 2)
	assert.Equal(t, model.PostTypeReel, records[0].PostType)

	_, err = c.Export(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, sink.saved[service.ExportFileName])
	assert.Equal(t, int64(1), stats.Snapshot().Exports)
}
