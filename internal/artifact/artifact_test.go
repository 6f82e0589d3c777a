package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTopic(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Topic
		wantErr error
	}{
		{
			name: "valid",
			raw:  `{"title":"The Rise of EVs","summary":"Why electric cars won.","keywords":["EV","battery"]}`,
			want: Topic{Title: "The Rise of EVs", Summary: "Why electric cars won.", Keywords: []string{"EV", "battery"}},
		},
		{
			name: "empty keywords allowed",
			raw:  `{"title":"T","summary":"S","keywords":[]}`,
			want: Topic{Title: "T", Summary: "S", Keywords: []string{}},
		},
		{
			name:    "missing keywords",
			raw:     `{"title":"T","summary":"S"}`,
			wantErr: ErrInvalid,
		},
		{
			name:    "null keywords",
			raw:     `{"title":"T","summary":"S","keywords":null}`,
			wantErr: ErrInvalid,
		},
		{
			name: "extra keys ignored",
			raw:  `{"title":"T","summary":"S","keywords":["ev"],"angle":"consumer"}`,
			want: Topic{Title: "T", Summary: "S", Keywords: []string{"ev"}},
		},
		{
			name:    "blank title",
			raw:     `{"title":"  ","summary":"S","keywords":[]}`,
			wantErr: ErrInvalid,
		},
		{
			name:    "wrong type",
			raw:     `{"title":3,"summary":"S","keywords":[]}`,
			wantErr: ErrInvalid,
		},
		{
			name:    "not json",
			raw:     `here is your topic!`,
			wantErr: ErrInvalid,
		},
		{
			name:    "empty",
			raw:     "   ",
			wantErr: ErrEmpty,
		},
		{
			name:    "null",
			raw:     "null",
			wantErr: ErrEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTopic([]byte(tt.raw))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeOutline(t *testing.T) {
	raw := `{
		"title": "The Rise of EVs",
		"subtitle": "Batteries included",
		"sections": [
			{"title": "Intro", "description": "Set the scene"},
			{"title": "Batteries", "description": "Chemistry and cost"}
		],
		"target_word_count": 1200
	}`
	got, err := DecodeOutline([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Batteries included", got.Subtitle)
	assert.Len(t, got.Sections, 2)
	assert.Equal(t, 1200, got.TargetWordCount)

	t.Run("subtitle optional", func(t *testing.T) {
		_, err := DecodeOutline([]byte(`{"title":"T","sections":[{"title":"A","description":"a"}],"target_word_count":10}`))
		require.NoError(t, err)
	})

	t.Run("null subtitle", func(t *testing.T) {
		got, err := DecodeOutline([]byte(`{"title":"The Rise of EVs","subtitle":null,"sections":[{"title":"A","description":"a"}],"target_word_count":1200}`))
		require.NoError(t, err)
		assert.Empty(t, got.Subtitle)
	})

	t.Run("extra section keys ignored", func(t *testing.T) {
		got, err := DecodeOutline([]byte(`{"title":"T","sections":[{"title":"A","description":"a","word_count":300}],"target_word_count":10}`))
		require.NoError(t, err)
		assert.Equal(t, "A", got.Sections[0].Title)
	})

	t.Run("null sections", func(t *testing.T) {
		_, err := DecodeOutline([]byte(`{"title":"T","sections":null,"target_word_count":10}`))
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("non-positive word count", func(t *testing.T) {
		_, err := DecodeOutline([]byte(`{"title":"T","sections":[{"title":"A","description":"a"}],"target_word_count":0}`))
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("no sections", func(t *testing.T) {
		_, err := DecodeOutline([]byte(`{"title":"T","sections":[],"target_word_count":10}`))
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("fractional word count", func(t *testing.T) {
		_, err := DecodeOutline([]byte(`{"title":"T","sections":[{"title":"A","description":"a"}],"target_word_count":10.5}`))
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestDecodeReferences(t *testing.T) {
	envelope := `{"references":[{"title":"IEA Outlook","url":"https://iea.org","key_points":["Sales doubled"]}]}`
	bare := `[{"title":"IEA Outlook","key_points":["Sales doubled"]}]`

	got, err := DecodeReferences([]byte(envelope))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://iea.org", got[0].URL)

	got, err = DecodeReferences([]byte(bare))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].URL)

	got, err = DecodeReferences([]byte(`[{"title":"IEA Outlook","url":null,"key_points":["Sales doubled"],"relevance":"high"}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].URL)

	_, err = DecodeReferences([]byte(`{"references":[]}`))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = DecodeReferences([]byte(`[{"title":"X","key_points":[]}]`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "plain", text: ` {"a":1} `, want: `{"a":1}`},
		{name: "json fence", text: "Sure!\n```json\n{\"a\":1}\n```\nDone.", want: `{"a":1}`},
		{name: "bare fence", text: "```\n[1,2]\n```", want: `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(ExtractJSON(tt.text)))
		})
	}
}

func TestSchemaMap(t *testing.T) {
	m, err := OutlineSchema.Map()
	require.NoError(t, err)
	props, ok := m["properties"].(map[string]any)
	require.True(t, ok, "schema should have properties")
	assert.Contains(t, props, "target_word_count")
	assert.Contains(t, props, "sections")

	required, ok := m["required"].([]any)
	require.True(t, ok)
	assert.Contains(t, required, "title")
	assert.NotContains(t, required, "subtitle")

	// Executors get the strict form even though replies are read leniently.
	assert.Equal(t, false, m["additionalProperties"])

	subtitle, ok := props["subtitle"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"null", "string"}, subtitle["type"])

	sections, ok := props["sections"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "array", sections["type"])
}

func TestText_Empty(t *testing.T) {
	assert.True(t, Text("").Empty())
	assert.True(t, Text(" \n\t").Empty())
	assert.False(t, Text("# Post").Empty())
}
