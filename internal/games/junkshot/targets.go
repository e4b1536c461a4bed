package junkshot

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/junkshot/internal/catalog"
)

// PlaceholderImage marks targets synthesized when the catalog is empty.
const PlaceholderImage = "#placeholder-texture"

// TargetSpec is one target of a round.
type TargetSpec struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Type      string `json:"type,omitempty"`
	Image     string `json:"image"`
	IsCorrect bool   `json:"isCorrect"`
}

// Item returns the catalog view of the target for category matching.
func (t TargetSpec) Item() *catalog.Item {
	return &catalog.Item{ID: t.ID, Name: t.Name, Category: t.Category, Type: t.Type, Image: t.Image}
}

// BuildRoundTargets picks gridSize² targets for category from pool.
//
// About half the slots hold matching items; when the pool cannot fill every
// slot, matching items are repeated. Each returned target has an ID unique
// within the round.
func BuildRoundTargets(pool []catalog.Item, category string, gridSize int, rng *rand.Rand) []TargetSpec {
	slots := max(0, gridSize*gridSize)
	if slots == 0 {
		return nil
	}

	if len(pool) == 0 {
		out := make([]TargetSpec, slots)
		for i := range out {
			out[i] = TargetSpec{
				ID:        fmt.Sprintf("%s-placeholder-%d", category, i),
				Name:      category + " sample",
				Category:  category,
				Type:      category,
				Image:     PlaceholderImage,
				IsCorrect: true,
			}
		}
		return out
	}

	var correct, incorrect []catalog.Item
	for i := range pool {
		if Matches(&pool[i], category) {
			correct = append(correct, pool[i])
		} else {
			incorrect = append(incorrect, pool[i])
		}
	}
	shuffle(rng, correct)
	shuffle(rng, incorrect)

	desiredCorrect := min(len(correct), max(1, (slots+1)/2))
	desiredIncorrect := slots - desiredCorrect

	ids := newIDAllocator(category)
	out := make([]TargetSpec, 0, slots)
	for _, it := range correct[:desiredCorrect] {
		out = append(out, ids.spec(it, true))
	}
	for _, it := range incorrect[:min(desiredIncorrect, len(incorrect))] {
		out = append(out, ids.spec(it, false))
	}
	for i := 0; len(out) < slots && len(correct) > 0; i++ {
		out = append(out, ids.spec(correct[i%len(correct)], true))
	}

	shuffle(rng, out)
	return out
}

func shuffle[T any](rng *rand.Rand, s []T) {
	rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// idAllocator hands out round-unique target IDs.
type idAllocator struct {
	category string
	used     map[string]int
	anon     int
}

func newIDAllocator(category string) *idAllocator {
	return &idAllocator{category: category, used: make(map[string]int)}
}

func (a *idAllocator) next(base string) string {
	if base == "" {
		for {
			a.anon++
			id := fmt.Sprintf("%s-%d", a.category, a.anon)
			if _, taken := a.used[id]; !taken {
				a.used[id] = 1
				return id
			}
		}
	}
	n, seen := a.used[base]
	if !seen {
		a.used[base] = 1
		return base
	}
	for {
		id := fmt.Sprintf("%s-%d", base, n)
		n++
		if _, taken := a.used[id]; !taken {
			a.used[base] = n
			a.used[id] = 1
			return id
		}
	}
}

func (a *idAllocator) spec(it catalog.Item, correct bool) TargetSpec {
	return TargetSpec{
		ID:        a.next(it.ID),
		Name:      it.Name,
		Category:  it.Category,
		Type:      it.Type,
		Image:     it.Image,
		IsCorrect: correct,
	}
}
