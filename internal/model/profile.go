package model

// ==================== 表单边界 ====================

const (
	MinPostCount = 1
	MaxPostCount = 30

	MinSlideCount = 1
	MaxSlideCount = 15

	MinDurationSeconds = 5
	MaxDurationSeconds = 90

	// SceneSeconds Reel 每个分镜的时长
	SceneSeconds = 5
)

// ==================== 类型联动表 ====================

// TypeProfile 某个帖子类型对应的默认值与可编辑字段
type TypeProfile struct {
	DefaultSlides   int
	DefaultSeconds  int
	SlidesEditable  bool
	SecondsEditable bool

	// FixedSlides > 0 时忽略请求中的页数
	FixedSlides int
}

// ProfileOf 返回类型联动配置
// 切换类型时，表单按此表重置页数与时长
func ProfileOf(t PostType) TypeProfile {
	switch t {
	case PostTypePost:
		return TypeProfile{DefaultSlides: 1, DefaultSeconds: 15, FixedSlides: 1}
	case PostTypeCarousel:
		return TypeProfile{DefaultSlides: 7, DefaultSeconds: 15, SlidesEditable: true}
	case PostTypeReel:
		return TypeProfile{DefaultSlides: 1, DefaultSeconds: 15, SecondsEditable: true}
	case PostTypeMixed:
		return TypeProfile{DefaultSlides: 7, DefaultSeconds: 15, SlidesEditable: true, SecondsEditable: true}
	}
	return TypeProfile{DefaultSlides: 1, DefaultSeconds: 15}
}

// EffectiveSlides 实际使用的页数
func EffectiveSlides(t PostType, requested int) int {
	if fixed := ProfileOf(t).FixedSlides; fixed > 0 {
		return fixed
	}
	return requested
}

// SceneCount Reel 分镜数 = floor(seconds / 5)，不足 5 秒为 0
func SceneCount(seconds int) int {
	if seconds < SceneSeconds {
		return 0
	}
	return seconds / SceneSeconds
}
