package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePostType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PostType
		wantErr bool
	}{
		{name: "标准名称", input: "Carousel", want: PostTypeCarousel},
		{name: "小写", input: "reel", want: PostTypeReel},
		{name: "带空格", input: " Mixed ", want: PostTypeMixed},
		{name: "未知类型", input: "Story", wantErr: true},
		{name: "空字符串", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePostType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostType_JSON(t *testing.T) {
	rec := PostRecord{Index: 1, PostType: PostTypeReel, HeadlineCopy: []string{"Scene 1"}}
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"postType":"Reel"`)

	var back PostRecord
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, PostTypeReel, back.PostType)

	_, err = json.Marshal(PostRecord{PostType: PostType(42)})
	assert.Error(t, err)
}

func TestProfileOf_Table(t *testing.T) {
	for _, pt := range AllPostTypes {
		p := ProfileOf(pt)
		assert.GreaterOrEqual(t, p.DefaultSlides, MinSlideCount, pt.String())
		assert.Equal(t, 15, p.DefaultSeconds, pt.String())
	}

	assert.Equal(t, 7, ProfileOf(PostTypeCarousel).DefaultSlides)
	assert.False(t, ProfileOf(PostTypeReel).SlidesEditable)
	assert.True(t, ProfileOf(PostTypeReel).SecondsEditable)
	assert.False(t, ProfileOf(PostTypePost).SecondsEditable)

	mixed := ProfileOf(PostTypeMixed)
	assert.True(t, mixed.SlidesEditable && mixed.SecondsEditable)
}

func TestEffectiveSlides(t *testing.T) {
	assert.Equal(t, 1, EffectiveSlides(PostTypePost, 9))
	assert.Equal(t, 9, EffectiveSlides(PostTypeCarousel, 9))
}

func TestSceneCount(t *testing.T) {
	assert.Equal(t, 3, SceneCount(15))
	assert.Equal(t, 0, SceneCount(4))
	assert.Equal(t, 1, SceneCount(9))
	assert.Equal(t, 18, SceneCount(90))
}

func TestPostRecord_Text(t *testing.T) {
	rec := PostRecord{
		HeadlineCopy: []string{"a", "b"},
		Hashtags:     []string{"#x", "#y"},
	}
	assert.Equal(t, "a\nb", rec.HeadlineText())
	assert.Equal(t, "#x #y", rec.HashtagText())
}
