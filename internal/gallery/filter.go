// Package gallery holds the client side browsing state: search and
// category filtering, pagination and the view model the front-ends draw.
// Nothing in here performs I/O.
package gallery

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Nikocoro/prubas123/internal/models"
)

// Policy decides how several selected categories combine.
type Policy string

const (
	// PolicyAny keeps profiles carrying at least one selected category.
	PolicyAny Policy = "any"
	// PolicyAll keeps profiles carrying every selected category.
	PolicyAll Policy = "all"
)

var ErrUnknownPolicy = errors.New("unknown category policy")

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyAny, "":
		return PolicyAny, nil
	case PolicyAll:
		return PolicyAll, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

type Filter struct {
	Search     string
	Categories map[string]struct{}
	Page       int
}

func NewFilter() Filter {
	return Filter{Categories: map[string]struct{}{}, Page: 1}
}

func (f Filter) Selected(category string) bool {
	_, ok := f.Categories[category]
	return ok
}

// SelectedCategories returns the selection sorted by name.
func (f Filter) SelectedCategories() []string {
	out := make([]string, 0, len(f.Categories))
	for c := range f.Categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// MatchesSearch reports whether the profile name contains term, ignoring
// case. An empty term matches everything.
func MatchesSearch(p models.Profile, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(term))
}

func MatchesCategories(p models.Profile, selected map[string]struct{}, policy Policy) bool {
	if len(selected) == 0 {
		return true
	}

	if policy == PolicyAll {
		for c := range selected {
			if !p.HasCategory(c) {
				return false
			}
		}
		return true
	}

	for c := range selected {
		if p.HasCategory(c) {
			return true
		}
	}
	return false
}

// Apply returns the profiles passing both the search and category filters,
// preserving input order.
func Apply(profiles []models.Profile, filter Filter, policy Policy) []models.Profile {
	out := make([]models.Profile, 0, len(profiles))
	for _, p := range profiles {
		if MatchesSearch(p, filter.Search) && MatchesCategories(p, filter.Categories, policy) {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists the distinct categories in first-seen order.
func Categories(profiles []models.Profile) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range profiles {
		for _, c := range p.Categories {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
