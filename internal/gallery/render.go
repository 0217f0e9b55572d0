package gallery

import (
	"strings"

	"github.com/Nikocoro/prubas123/internal/models"
)

const (
	FallbackPhoto = "/img/profile-placeholder.svg"

	// Images start loading once their card is this close to the viewport
	// and at least this fraction of it is visible.
	LazyRootMargin = "50px"
	LazyThreshold  = 0.1

	// AllCategories is the chip that clears the category selection.
	AllCategories = "all"
)

type ActionKind string

const (
	ActionEdit   ActionKind = "edit"
	ActionDelete ActionKind = "delete"
)

type View struct {
	Cards      []Card
	Filters    []Chip
	Empty      bool
	Pagination Pagination
}

type Card struct {
	ID         string
	Name       string
	Image      Image
	Links      []Link
	Categories []Chip
	Actions    []Action
}

type Image struct {
	Src        string
	Alt        string
	Fallback   string
	RootMargin string
	Threshold  float64
}

type Link struct {
	Label string
	Href  string
}

type Chip struct {
	Label  string
	Value  string
	Active bool
}

type Action struct {
	Kind      ActionKind
	ProfileID string
}

type Pagination struct {
	Page    int
	Pages   int
	Total   int
	HasPrev bool
	HasNext bool
}

// Render turns a page of profiles into the view model for role. categories
// feeds the filter bar and is usually Categories of the full list.
func Render(page Page, role models.UserRole, filter Filter, categories []string) View {
	view := View{
		Cards: make([]Card, 0, len(page.Items)),
		Empty: len(page.Items) == 0,
		Pagination: Pagination{
			Page:    page.Number,
			Pages:   page.Count,
			Total:   page.Total,
			HasPrev: page.HasPrev(),
			HasNext: page.HasNext(),
		},
	}

	view.Filters = append(view.Filters, Chip{Label: AllCategories, Value: AllCategories, Active: len(filter.Categories) == 0})
	for _, c := range categories {
		view.Filters = append(view.Filters, Chip{Label: c, Value: c, Active: filter.Selected(c)})
	}

	for _, p := range page.Items {
		view.Cards = append(view.Cards, renderCard(p, role, filter))
	}
	return view
}

func renderCard(p models.Profile, role models.UserRole, filter Filter) Card {
	card := Card{
		ID:   p.ID,
		Name: p.Name,
		Image: Image{
			Src:        p.Photo,
			Alt:        p.Name,
			Fallback:   FallbackPhoto,
			RootMargin: LazyRootMargin,
			Threshold:  LazyThreshold,
		},
	}
	if card.Image.Src == "" {
		card.Image.Src = FallbackPhoto
	}

	for _, l := range p.Links {
		card.Links = append(card.Links, Link{Label: l, Href: LinkHref(l)})
	}
	for _, c := range p.Categories {
		card.Categories = append(card.Categories, Chip{Label: c, Value: c, Active: filter.Selected(c)})
	}

	if role == models.RoleAdmin {
		card.Actions = []Action{
			{Kind: ActionEdit, ProfileID: p.ID},
			{Kind: ActionDelete, ProfileID: p.ID},
		}
	}
	return card
}

// LinkHref makes a stored link absolute. Links are usually saved without a
// scheme ("instagram.com/ana").
func LinkHref(link string) string {
	link = strings.TrimSpace(link)
	if strings.Contains(link, "://") || strings.HasPrefix(link, "mailto:") {
		return link
	}
	return "https://" + strings.TrimPrefix(link, "//")
}
