package model

import (
	"fmt"
	"strings"
)

// ==================== 帖子类型 ====================

// PostType 帖子类型 (封闭枚举)
type PostType int

const (
	PostTypePost PostType = iota + 1
	PostTypeCarousel
	PostTypeReel
	PostTypeMixed
)

// BaseTypes Mixed 模式下逐条抽取的基础类型 (均匀分布)
var BaseTypes = []PostType{PostTypePost, PostTypeCarousel, PostTypeReel}

// AllPostTypes 全部可选类型，顺序即表单下拉顺序
var AllPostTypes = []PostType{PostTypePost, PostTypeCarousel, PostTypeReel, PostTypeMixed}

func (t PostType) String() string {
	switch t {
	case PostTypePost:
		return "Post"
	case PostTypeCarousel:
		return "Carousel"
	case PostTypeReel:
		return "Reel"
	case PostTypeMixed:
		return "Mixed"
	}
	return fmt.Sprintf("PostType(%d)", int(t))
}

// Valid 是否为已知类型
func (t PostType) Valid() bool {
	return t >= PostTypePost && t <= PostTypeMixed
}

// ParsePostType 解析类型名 (大小写不敏感)
func ParsePostType(s string) (PostType, error) {
	name := strings.TrimSpace(s)
	for _, t := range AllPostTypes {
		if strings.EqualFold(name, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown post type %q", s)
}

// MarshalText JSON 中以类型名输出
func (t PostType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid post type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText 从类型名解析
func (t *PostType) UnmarshalText(b []byte) error {
	parsed, err := ParsePostType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ==================== 生成请求 / 结果 ====================

// GenerationRequest 一次生成请求，由表单状态构建，用完即弃
type GenerationRequest struct {
	Topic           string
	PostType        PostType
	PostCount       int
	SlideCount      int
	DurationSeconds int
}

// PostRecord 单条生成结果
type PostRecord struct {
	Index    int      `json:"index"`    // 从 1 开始
	PostType PostType `json:"postType"` // 实际类型 (Mixed 时逐条抽取)

	// Post/Carousel 为逐页文案；Reel 只有一个元素，即整段脚本
	HeadlineCopy []string `json:"headlineCopy"`
	Hashtags     []string `json:"hashtags"`
	Caption      string   `json:"caption"`
}

// HeadlineText 文案拼接文本，用于去重与导出
func (p PostRecord) HeadlineText() string {
	return strings.Join(p.HeadlineCopy, "\n")
}

// HashtagText 标签拼接文本
func (p PostRecord) HashtagText() string {
	return strings.Join(p.Hashtags, " ")
}
