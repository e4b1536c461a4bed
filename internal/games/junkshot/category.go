// Package junkshot implements the trash-sorting shooting gallery: round
// orchestration, scoring, target placement and shot resolution.
//
// Everything in a Session runs on a single loop.Scheduler; callers from
// other goroutines go through the Session's exported methods, which post
// onto the loop.
package junkshot

import (
	"strings"

	"github.com/vovakirdan/junkshot/internal/catalog"
)

// Round categories.
const (
	CategoryOrganic    = "organic"
	CategoryInorganic  = "inorganic"
	CategoryRecyclable = "recyclable"
	CategoryHazardous  = "hazardous"
)

// Matches reports whether item belongs to the expected category.
// Comparison ignores case and surrounding whitespace; an item without a
// category falls back to its type.
func Matches(item *catalog.Item, expected string) bool {
	if item == nil {
		return false
	}
	want := strings.ToLower(strings.TrimSpace(expected))
	if want == "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(item.Kind())) == want
}

// promptText is the banner shown while a round's category is announced.
func promptText(category string) string {
	return "Shoot all the " + strings.ToUpper(category) + " trash!"
}
