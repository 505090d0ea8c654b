package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"instagen/internal/model"
	"strconv"
	"strings"
)

// Request DTO (前端传进来的数据)

// GenerateReq 批量生成请求
// 未传字段按后端默认值处理
// numSlides 仅 Carousel/Mixed 生效，numSeconds 仅 Reel/Mixed 生效，范围由生成服务校验
type GenerateReq struct {
	Topic      string   `json:"topic" binding:"required,notblank"`
	PostType   string   `json:"postType" binding:"omitempty,posttype"`
	NumPosts   *FlexInt `json:"numPosts" binding:"omitempty,min=1,max=30"`
	NumSlides  *FlexInt `json:"numSlides"`
	NumSeconds *FlexInt `json:"numSeconds"`
}

// ToRequest 转为领域请求并补齐默认值
func (r GenerateReq) ToRequest() (model.GenerationRequest, error) {
	postType := model.PostTypePost
	if r.PostType != "" {
		parsed, err := model.ParsePostType(r.PostType)
		if err != nil {
			return model.GenerationRequest{}, err
		}
		postType = parsed
	}

	// 当前类型用不到的字段忽略传入值
	profile := model.ProfileOf(postType)
	req := model.GenerationRequest{
		Topic:           strings.TrimSpace(r.Topic),
		PostType:        postType,
		PostCount:       r.NumPosts.Or(1),
		SlideCount:      profile.DefaultSlides,
		DurationSeconds: profile.DefaultSeconds,
	}
	if profile.SlidesEditable {
		req.SlideCount = r.NumSlides.Or(profile.DefaultSlides)
	}
	if profile.SecondsEditable {
		req.DurationSeconds = r.NumSeconds.Or(profile.DefaultSeconds)
	}
	return req, nil
}

// Response DTO (返回给前端的数据)

// PostResp 单条帖子，导出接口也使用同一结构
type PostResp struct {
	Index        int      `json:"index,omitempty"`
	PostType     string   `json:"postType" binding:"omitempty,posttype"`
	HeadlineCopy FlexText `json:"headlineCopy"`
	Hashtags     FlexTags `json:"hashtags"`
	Caption      string   `json:"caption"`
}

// FromRecord 领域对象 -> 响应
func FromRecord(rec model.PostRecord) PostResp {
	return PostResp{
		Index:        rec.Index,
		PostType:     rec.PostType.String(),
		HeadlineCopy: FlexText(rec.HeadlineCopy),
		Hashtags:     FlexTags(rec.Hashtags),
		Caption:      rec.Caption,
	}
}

// FromRecords 批量转换
func FromRecords(records []model.PostRecord) []PostResp {
	out := make([]PostResp, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return out
}

// ToRecord 响应 -> 领域对象，position 从 0 开始
// postType 缺省按 Post 处理
func (p PostResp) ToRecord(position int) (model.PostRecord, error) {
	postType := model.PostTypePost
	if p.PostType != "" {
		parsed, err := model.ParsePostType(p.PostType)
		if err != nil {
			return model.PostRecord{}, err
		}
		postType = parsed
	}

	index := p.Index
	if index <= 0 {
		index = position + 1
	}
	return model.PostRecord{
		Index:        index,
		PostType:     postType,
		HeadlineCopy: []string(p.HeadlineCopy),
		Hashtags:     []string(p.Hashtags),
		Caption:      p.Caption,
	}, nil
}

// ToRecords 批量转换
func ToRecords(items []PostResp) ([]model.PostRecord, error) {
	out := make([]model.PostRecord, 0, len(items))
	for i, item := range items {
		rec, err := item.ToRecord(i)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ==================== 宽松 JSON 类型 ====================

// FlexText 兼容 string 与 []string 两种形态的文案
// 输出时单行为 string，多行为数组
type FlexText []string

func (f FlexText) MarshalJSON() ([]byte, error) {
	if len(f) == 1 {
		return json.Marshal(f[0])
	}
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(f))
}

func (f *FlexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexText{s}
	default:
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return fmt.Errorf("headlineCopy must be a string or an array of strings: %w", err)
		}
		*f = list
	}
	return nil
}

// FlexTags 标签，string 形态按空白切分
type FlexTags []string

func (f FlexTags) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(f))
}

func (f *FlexTags) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = strings.Fields(s)
	default:
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return fmt.Errorf("hashtags must be a string or an array of strings: %w", err)
		}
		*f = list
	}
	return nil
}

// FlexInt 兼容数字与数字字符串 (前端 input 常直接提交字符串)
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = FlexInt(v)
		return nil
	}

	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = FlexInt(v)
	return nil
}

// Or 为空时返回默认值
func (n *FlexInt) Or(def int) int {
	if n == nil {
		return def
	}
	return int(*n)
}

// IntPtr 构造请求时使用
func IntPtr(v int) *FlexInt {
	n := FlexInt(v)
	return &n
}
