package store

import (
	"math/rand/v2"
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_]+`)
)

// Slugify converts a category name into a URL-safe slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugCollapse.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

var categoryColors = []string{
	"#EF4444",
	"#F97316",
	"#EAB308",
	"#22C55E",
	"#14B8A6",
	"#3B82F6",
	"#8B5CF6",
	"#EC4899",
	"#6366F1",
	"#06B6D4",
}

func randomColor() string {
	return categoryColors[rand.IntN(len(categoryColors))]
}
