// Package promptindex filters and orders the community prompt index.
package promptindex

import (
	"regexp"
	"slices"
	"strings"

	"domin8x/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort modes.
const (
	SortAlphabetical = "alphabetical"
	SortPopularity   = "popularity"
	SortUsage        = "usage"
	SortSuccess      = "success"
)

// Query selects and orders prompts. Zero values match everything and keep the base order.
type Query struct {
	Search   string
	Category string
	Type     string
	Sort     string
}

// Apply returns the prompts matching q, ordered by q.Sort. The input is not modified.
func Apply(prompts []models.Prompt, q Query) []models.Prompt {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.Prompt, 0, len(prompts))
	for _, p := range prompts {
		if matchesSearch(p, term) && matchesCategory(p, q.Category) && matchesType(p, q.Type) {
			out = append(out, p)
		}
	}
	Sort(out, q.Sort)
	return out
}

func matchesSearch(p models.Prompt, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Text), term) {
		return true
	}
	for _, tag := range p.Hashtags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func matchesCategory(p models.Prompt, category string) bool {
	return category == "" || category == models.PromptCategoryAll || p.Category == category
}

func matchesType(p models.Prompt, contentType string) bool {
	return contentType == "" || contentType == models.ContentTypeAll || p.Type == contentType
}

// Sort orders prompts in place. Ties keep their relative order; an unknown mode is a no-op.
func Sort(prompts []models.Prompt, mode string) {
	switch mode {
	case SortAlphabetical:
		// Collators keep scratch buffers and are not safe to share.
		c := collate.New(language.English)
		slices.SortStableFunc(prompts, func(a, b models.Prompt) int {
			return c.CompareString(a.Text, b.Text)
		})
	case SortPopularity:
		slices.SortStableFunc(prompts, func(a, b models.Prompt) int { return b.Likes - a.Likes })
	case SortUsage:
		slices.SortStableFunc(prompts, func(a, b models.Prompt) int { return b.Uses - a.Uses })
	case SortSuccess:
		slices.SortStableFunc(prompts, func(a, b models.Prompt) int { return b.SuccessRate - a.SuccessRate })
	}
}

// ParseHashtags splits a comma separated list, trims each piece, drops empty
// ones and adds a leading '#' where missing.
func ParseHashtags(raw string) []string {
	tags := []string{}
	for _, piece := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(piece)
		if tag == "" || tag == "#" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		tags = append(tags, tag)
	}
	return tags
}

var hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

// ExtractHashtags returns the distinct hashtags in text, in first-seen order
// and lowercased.
func ExtractHashtags(text string) []string {
	var tags []string
	seen := map[string]struct{}{}
	for _, m := range hashtagPattern.FindAllString(text, -1) {
		tag := strings.ToLower(m)
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
