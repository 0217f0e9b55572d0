package gallery

import (
	"slices"
	"strings"

	"github.com/Nikocoro/prubas123/internal/models"
)

// State is the browsing session of one client: the last loaded profile
// list plus the filter applied to it. It is not safe for concurrent use.
type State struct {
	profiles []models.Profile
	filter   Filter
	policy   Policy
	pageSize int
}

func NewState(policy Policy, pageSize int) *State {
	if policy == "" {
		policy = PolicyAny
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &State{filter: NewFilter(), policy: policy, pageSize: pageSize}
}

// Load replaces the profile list. The filter is kept; a page that no longer
// exists clamps on the next Current.
func (s *State) Load(profiles []models.Profile) {
	s.profiles = slices.Clone(profiles)
}

func (s *State) Profiles() []models.Profile { return s.profiles }
func (s *State) Filter() Filter             { return s.filter }
func (s *State) Policy() Policy             { return s.policy }

func (s *State) SetSearch(term string) {
	s.filter.Search = strings.TrimSpace(term)
	s.filter.Page = 1
}

// ToggleCategory selects category, or deselects it when already selected.
func (s *State) ToggleCategory(category string) {
	if s.filter.Selected(category) {
		delete(s.filter.Categories, category)
	} else {
		s.filter.Categories[category] = struct{}{}
	}
	s.filter.Page = 1
}

func (s *State) ClearCategories() {
	s.filter.Categories = map[string]struct{}{}
	s.filter.Page = 1
}

func (s *State) SetPolicy(policy Policy) {
	s.policy = policy
	s.filter.Page = 1
}

// SetPage moves to page n, clamping to the last page.
func (s *State) SetPage(n int) (Page, error) {
	page, err := Paginate(s.filtered(), n, s.pageSize)
	if err != nil {
		return Page{}, err
	}
	s.filter.Page = page.Number
	return page, nil
}

func (s *State) NextPage() bool {
	page := s.Current()
	if !page.HasNext() {
		return false
	}
	s.filter.Page++
	return true
}

func (s *State) PrevPage() bool {
	page := s.Current()
	if !page.HasPrev() {
		return false
	}
	s.filter.Page--
	return true
}

func (s *State) Current() Page {
	page, err := Paginate(s.filtered(), s.filter.Page, s.pageSize)
	if err != nil {
		s.filter.Page = 1
		page, _ = Paginate(s.filtered(), 1, s.pageSize)
	}
	s.filter.Page = page.Number
	return page
}

func (s *State) Find(id string) (models.Profile, bool) {
	for _, p := range s.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return models.Profile{}, false
}

// View renders the current page for role.
func (s *State) View(role models.UserRole) View {
	return Render(s.Current(), role, s.filter, Categories(s.profiles))
}

func (s *State) filtered() []models.Profile {
	return Apply(s.profiles, s.filter, s.policy)
}
