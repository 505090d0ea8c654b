package service

import (
	"context"
	"errors"
	"fmt"
	"instagen/internal/model"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// ==================== 错误定义 ====================

var (
	ErrEmptyTopic        = errors.New("topic is required")
	ErrInvalidCount      = errors.New("post count out of range")
	ErrInvalidSlides     = errors.New("slide count out of range")
	ErrInvalidDuration   = errors.New("duration out of range")
	ErrInvalidPostType   = errors.New("invalid post type")
	ErrHashtagsExhausted = errors.New("could not find a unique hashtag ordering")
	ErrInvalidPools      = errors.New("invalid template pools")
)

// ==================== 素材池 ====================

// Pools 模板素材池
type Pools struct {
	Words    []string
	Phrases  []string
	Hashtags []string
}

// DefaultPools 默认素材池
func DefaultPools() Pools {
	return Pools{
		Words: []string{
			"amazing", "awesome", "beautiful", "best", "cool",
			"cute", "fantastic", "great", "happy", "inspiring",
		},
		Phrases: []string{
			"Check out this",
			"What do you think of this",
			"Let me know your thoughts on",
			"I'm excited to share this",
			"This is my favorite",
		},
		Hashtags: []string{
			"#amazing", "#awesome", "#beautiful", "#bestoftheday", "#cool",
			"#cute", "#fashion", "#follow", "#followme", "#food",
			"#fun", "#happy", "#igers", "#instagood", "#instalike",
			"#instamood", "#love", "#me", "#photooftheday", "#picoftheday",
			"#smile", "#style", "#summer", "#sun", "#travel",
		},
	}
}

// Validate 单词与短语池非空，标签池至少有 HashtagsPerPost 个不同标签
func (p Pools) Validate() error {
	if len(p.Words) == 0 {
		return fmt.Errorf("%w: word pool is empty", ErrInvalidPools)
	}
	if len(p.Phrases) == 0 {
		return fmt.Errorf("%w: phrase pool is empty", ErrInvalidPools)
	}
	distinct := make(map[string]struct{}, len(p.Hashtags))
	for _, tag := range p.Hashtags {
		distinct[tag] = struct{}{}
	}
	if len(distinct) < HashtagsPerPost {
		return fmt.Errorf("%w: need %d distinct hashtags, got %d", ErrInvalidPools, HashtagsPerPost, len(distinct))
	}
	return nil
}

const (
	// HashtagsPerPost 每条帖子的标签数
	HashtagsPerPost = 10

	modifiedMarker = " (modified)"
	maxReshuffles  = 1000
)

// ==================== 服务 ====================

// FabricatorService 模板文案生成服务
// rand.Rand 非并发安全，由 mu 保护
type FabricatorService struct {
	mu    sync.Mutex
	rng   *rand.Rand
	pools Pools
	stats *Stats
}

// FabricatorOption 构造选项
type FabricatorOption func(*FabricatorService)

// WithSeed 固定随机种子，便于复现
func WithSeed(seed1, seed2 uint64) FabricatorOption {
	return func(s *FabricatorService) {
		s.rng = rand.New(rand.NewPCG(seed1, seed2))
	}
}

// WithRand 直接注入随机源
func WithRand(rng *rand.Rand) FabricatorOption {
	return func(s *FabricatorService) {
		s.rng = rng
	}
}

// WithPools 替换素材池
func WithPools(p Pools) FabricatorOption {
	return func(s *FabricatorService) {
		s.pools = p
	}
}

// WithStats 挂载统计
func WithStats(st *Stats) FabricatorOption {
	return func(s *FabricatorService) {
		s.stats = st
	}
}

// NewFabricatorService 创建生成服务，素材池不合法时返回 ErrInvalidPools
func NewFabricatorService(opts ...FabricatorOption) (*FabricatorService, error) {
	s := &FabricatorService{pools: DefaultPools()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.pools.Validate(); err != nil {
		return nil, err
	}
	if s.rng == nil {
		now := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(now, now>>17|1))
	}
	return s, nil
}

// Generate 按请求批量生成帖子
// 同一次调用内文案与标签串互不重复
func (s *FabricatorService) Generate(ctx context.Context, req model.GenerationRequest) ([]model.PostRecord, error) {
	records, err := s.generate(ctx, req)
	if s.stats != nil {
		if err != nil {
			s.stats.RecordFailure()
		} else {
			s.stats.RecordGeneration(len(records))
		}
	}
	return records, err
}

func (s *FabricatorService) generate(ctx context.Context, req model.GenerationRequest) ([]model.PostRecord, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, ErrEmptyTopic
	}
	if !req.PostType.Valid() {
		return nil, ErrInvalidPostType
	}
	if req.PostCount < model.MinPostCount || req.PostCount > model.MaxPostCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, req.PostCount)
	}
	if needsSlides(req.PostType) && (req.SlideCount < model.MinSlideCount || req.SlideCount > model.MaxSlideCount) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlides, req.SlideCount)
	}
	// 低于 5 秒合法，生成空脚本
	if needsDuration(req.PostType) && (req.DurationSeconds < 0 || req.DurationSeconds > model.MaxDurationSeconds) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, req.DurationSeconds)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seenCopy := make(map[string]struct{}, req.PostCount)
	seenTags := make(map[string]struct{}, req.PostCount)
	records := make([]model.PostRecord, 0, req.PostCount)

	for i := 1; i <= req.PostCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		effective := drawEffectiveType(s.rng, req.PostType)

		var copyLines []string
		if effective == model.PostTypeReel {
			copyLines = []string{buildReelScript(s.rng, s.pools, req.DurationSeconds)}
		} else {
			copyLines = buildSlides(s.rng, s.pools, effective, i, model.EffectiveSlides(effective, req.SlideCount))
		}
		copyLines = ensureUniqueLines(copyLines, seenCopy)

		tags, err := drawHashtags(s.rng, s.pools.Hashtags, HashtagsPerPost, seenTags)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", i, err)
		}

		records = append(records, model.PostRecord{
			Index:        i,
			PostType:     effective,
			HeadlineCopy: copyLines,
			Hashtags:     tags,
			Caption:      buildCaption(effective, req.Topic, copyLines),
		})
	}

	return records, nil
}

// ==================== 文案拼装 ====================

// needsSlides 请求类型是否会用到页数
func needsSlides(t model.PostType) bool {
	return t == model.PostTypeCarousel || t == model.PostTypeMixed
}

// needsDuration 请求类型是否会用到时长
func needsDuration(t model.PostType) bool {
	return t == model.PostTypeReel || t == model.PostTypeMixed
}

// drawEffectiveType Mixed 时在 BaseTypes 中均匀抽取
func drawEffectiveType(rng *rand.Rand, requested model.PostType) model.PostType {
	if requested != model.PostTypeMixed {
		return requested
	}
	return model.BaseTypes[rng.IntN(len(model.BaseTypes))]
}

// buildSlides 逐页文案: "<phrase> <word> slide <n> in <type> <index>"
func buildSlides(rng *rand.Rand, pools Pools, t model.PostType, index, slides int) []string {
	lines := make([]string, 0, slides)
	label := strings.ToLower(t.String())
	for n := 1; n <= slides; n++ {
		phrase := pools.Phrases[rng.IntN(len(pools.Phrases))]
		word := pools.Words[rng.IntN(len(pools.Words))]
		lines = append(lines, fmt.Sprintf("%s %s slide %d in %s %d", phrase, word, n, label, index))
	}
	return lines
}

// buildReelScript 分镜脚本，分镜数 floor(seconds/5)
func buildReelScript(rng *rand.Rand, pools Pools, seconds int) string {
	scenes := model.SceneCount(seconds)
	parts := make([]string, 0, scenes)
	for n := 1; n <= scenes; n++ {
		word := pools.Words[rng.IntN(len(pools.Words))]
		parts = append(parts, fmt.Sprintf("Scene %d: [Description - %s]", n, word))
	}
	return strings.Join(parts, " ")
}

// buildCaption 互动引导文案
func buildCaption(t model.PostType, topic string, lines []string) string {
	summary := "fresh ideas"
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		summary = lines[0]
	}
	return fmt.Sprintf("Check out this %s about %s with %s! #engagement",
		strings.ToLower(t.String()), strings.TrimSpace(topic), summary)
}

// ==================== 去重 ====================

// ensureUnique 与 seen 冲突时追加标记直到唯一，并记入 seen
// 每次追加都会得到更长的字符串，最多追加 len(seen) 次
func ensureUnique(text string, seen map[string]struct{}) string {
	for {
		if _, dup := seen[text]; !dup {
			break
		}
		text = strings.TrimLeft(text+modifiedMarker, " ")
	}
	seen[text] = struct{}{}
	return text
}

// ensureUniqueLines 对整段文案去重，标记追加在最后一行
func ensureUniqueLines(lines []string, seen map[string]struct{}) []string {
	if len(lines) == 0 {
		lines = []string{""}
	}
	joined := strings.Join(lines, "\n")
	unique := ensureUnique(joined, seen)
	if unique == joined {
		return lines
	}

	out := make([]string, len(lines))
	copy(out, lines)
	out[len(out)-1] += unique[len(joined):]
	out[len(out)-1] = strings.TrimLeft(out[len(out)-1], " ")
	return out
}

// drawHashtags 无放回抽取 n 个标签
// 拼接串与 seen 冲突时只重排同一组标签，不重新抽取
func drawHashtags(rng *rand.Rand, pool []string, n int, seen map[string]struct{}) ([]string, error) {
	if n > len(pool) {
		return nil, fmt.Errorf("%w: need %d hashtags, pool has %d", ErrInvalidPools, n, len(pool))
	}

	// 部分 Fisher-Yates
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	tags := shuffled[:n:n]

	joined := strings.Join(tags, " ")
	for attempt := 0; ; attempt++ {
		if _, dup := seen[joined]; !dup {
			break
		}
		if attempt >= maxReshuffles {
			return nil, ErrHashtagsExhausted
		}
		rng.Shuffle(len(tags), func(i, j int) { tags[i], tags[j] = tags[j], tags[i] })
		joined = strings.Join(tags, " ")
	}

	seen[joined] = struct{}{}
	return tags, nil
}
