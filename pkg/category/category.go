package category

import (
	"regexp"
	"slices"
	"strings"
)

type Category struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

var names = []string{
	"MARKET",
	"WORKSHOP",
	"ARTS & CRAFTS",
	"OUTDOOR",
	"SOCIAL",
	"MUSIC",
	"TECH",
	"EXHIBIT",
	"HOBBY",
}

var whitespace = regexp.MustCompile(`\s+`)

// ID turns a category name into its filter slug: "ARTS & CRAFTS" -> "arts-&-crafts".
func ID(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "-")
}

// All returns the category catalogue in display order.
func All() []Category {
	categories := make([]Category, 0, len(names))
	for _, name := range names {
		categories = append(categories, Category{Name: name, ID: ID(name)})
	}
	return categories
}

func ByName(name string) (Category, bool) {
	if !slices.Contains(names, name) {
		return Category{}, false
	}
	return Category{Name: name, ID: ID(name)}, true
}

// MatchesAny reports whether at least one tag belongs to one of the selected
// category ids. An empty selection matches everything.
func MatchesAny(tags []string, selectedIDs []string) bool {
	if len(selectedIDs) == 0 {
		return true
	}
	for _, tag := range tags {
		if slices.Contains(selectedIDs, ID(tag)) {
			return true
		}
	}
	return false
}
