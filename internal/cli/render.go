package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Nikocoro/prubas123/internal/gallery"
)

// RenderView writes the view model as plain text.
func RenderView(w io.Writer, view gallery.View) {
	chips := make([]string, 0, len(view.Filters))
	for _, chip := range view.Filters {
		label := chip.Label
		if chip.Active {
			label = "[" + label + "]"
		}
		chips = append(chips, label)
	}
	fmt.Fprintf(w, "Categories: %s\n", strings.Join(chips, "  "))

	if view.Empty {
		fmt.Fprintln(w, "No profiles match the current filters.")
	}

	for i, card := range view.Cards {
		fmt.Fprintf(w, "%2d. %s  (%s)\n", i+1, card.Name, card.ID)
		fmt.Fprintf(w, "    photo: %s\n", card.Image.Src)

		if len(card.Categories) > 0 {
			cats := make([]string, 0, len(card.Categories))
			for _, c := range card.Categories {
				if c.Active {
					cats = append(cats, "*"+c.Label+"*")
				} else {
					cats = append(cats, c.Label)
				}
			}
			fmt.Fprintf(w, "    categories: %s\n", strings.Join(cats, ", "))
		}
		for _, link := range card.Links {
			fmt.Fprintf(w, "    link: %s\n", link.Href)
		}
		if len(card.Actions) > 0 {
			actions := make([]string, 0, len(card.Actions))
			for _, a := range card.Actions {
				actions = append(actions, fmt.Sprintf("%s %s", a.Kind, a.ProfileID))
			}
			fmt.Fprintf(w, "    actions: %s\n", strings.Join(actions, " | "))
		}
	}

	p := view.Pagination
	fmt.Fprintf(w, "Page %d/%d (%d profiles)", p.Page, p.Pages, p.Total)
	switch {
	case p.HasPrev && p.HasNext:
		fmt.Fprint(w, "  prev | next")
	case p.HasPrev:
		fmt.Fprint(w, "  prev")
	case p.HasNext:
		fmt.Fprint(w, "  next")
	}
	fmt.Fprintln(w)
}
