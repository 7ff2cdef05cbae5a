package promptindex

import (
	"testing"

	"domin8x/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// fixture mirrors the seeded index in its newest-first base order.
func fixture() []models.Prompt {
	return []models.Prompt{
		{ID: 1, Text: "iridescent prismatic crystal formation", Hashtags: []string{"#iridescent", "#crystal"}, Category: "Art", Type: "image", Likes: 342, Uses: 156, SuccessRate: 89},
		{ID: 2, Text: "cyberpunk neon-lit urban landscape at night", Hashtags: []string{"#cyberpunk", "#neon"}, Category: "Art", Type: "image", Likes: 287, Uses: 203, SuccessRate: 92},
		{ID: 3, Text: "ethereal ambient soundscape with celestial harmonies", Hashtags: []string{"#ethereal", "#ambient"}, Category: "Music", Type: "music", Likes: 198, Uses: 89, SuccessRate: 94},
		{ID: 4, Text: "watercolor botanical illustration with delicate details", Hashtags: []string{"#watercolor", "#botanical"}, Category: "Art", Type: "image", Likes: 445, Uses: 278, SuccessRate: 87},
		{ID: 5, Text: "epic orchestral adventure theme with heroic melodies", Hashtags: []string{"#orchestral", "#epic"}, Category: "Music", Type: "music", Likes: 356, Uses: 123, SuccessRate: 91},
		{ID: 6, Text: "minimalist geometric abstract with bold colors", Hashtags: []string{"#minimalist", "#geometric"}, Category: "Art", Type: "image", Likes: 234, Uses: 145, SuccessRate: 85},
		{ID: 7, Text: "vintage retro synthwave with nostalgic vibes", Hashtags: []string{"#vintage", "#synthwave"}, Category: "Music", Type: "music", Likes: 289, Uses: 167, SuccessRate: 88},
	}
}

func ids(prompts []models.Prompt) []uint {
	out := make([]uint, len(prompts))
	for i, p := range prompts {
		out[i] = p.ID
	}
	return out
}

func TestApply_AlphabeticalReturnsEverything(t *testing.T) {
	got := Apply(fixture(), Query{Category: models.PromptCategoryAll, Type: models.ContentTypeAll, Sort: SortAlphabetical})

	// cyberpunk, epic, ethereal, iridescent, minimalist, vintage, watercolor
	want := []uint{2, 5, 3, 1, 6, 7, 4}
	if diff := cmp.Diff(want, ids(got)); diff != "" {
		t.Errorf("alphabetical order mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_SortModes(t *testing.T) {
	tests := []struct {
		sort string
		want []uint
	}{
		{SortPopularity, []uint{4, 5, 1, 7, 2, 6, 3}},
		{SortUsage, []uint{4, 2, 7, 1, 6, 5, 3}},
		{SortSuccess, []uint{3, 2, 5, 1, 7, 4, 6}},
		{"", []uint{1, 2, 3, 4, 5, 6, 7}},
		{"random", []uint{1, 2, 3, 4, 5, 6, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			got := Apply(fixture(), Query{Sort: tt.sort})
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_StableTies(t *testing.T) {
	prompts := []models.Prompt{{ID: 1, Likes: 5}, {ID: 2, Likes: 9}, {ID: 3, Likes: 5}, {ID: 4, Likes: 5}}
	got := Apply(prompts, Query{Sort: SortPopularity})
	assert.Equal(t, []uint{2, 1, 3, 4}, ids(got))
}

func TestApply_Filters(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []uint
	}{
		{"search text case-insensitive", Query{Search: "NEON"}, []uint{2}},
		{"search hashtag", Query{Search: "#synth"}, []uint{7}},
		{"category", Query{Category: models.PromptCategoryMusic}, []uint{3, 5, 7}},
		{"type", Query{Type: models.ContentTypeImage}, []uint{1, 2, 4, 6}},
		{"combined", Query{Search: "with", Category: models.PromptCategoryArt, Type: models.ContentTypeImage}, []uint{4, 6}},
		{"no match", Query{Search: "polka"}, []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(fixture(), tt.query)
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("filter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	_ = Apply(in, Query{Sort: SortAlphabetical})
	assert.Equal(t, []uint{1, 2, 3, 4, 5, 6, 7}, ids(in))
}

func TestParseHashtags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b", []string{"#a", "#b"}},
		{"#a, b", []string{"#a", "#b"}},
		{" art , , #music ,", []string{"#art", "#music"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseHashtags(tt.in), tt.in)
	}
}

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Just made this #AIArt piece! #cyberpunk #aiart", []string{"#aiart", "#cyberpunk"}},
		{"#café_vibes, #2024.", []string{"#café_vibes", "#2024"}},
		{"no tags # here", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractHashtags(tt.in), tt.in)
	}
}
