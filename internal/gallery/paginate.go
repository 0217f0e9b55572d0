package gallery

import (
	"errors"

	"github.com/Nikocoro/prubas123/internal/models"
)

const DefaultPageSize = 20

var ErrPageOutOfRange = errors.New("page out of range")

type Page struct {
	Items  []models.Profile
	Number int
	Size   int
	// Count is the number of pages; an empty list still has one.
	Count int
	Total int
	// Clamped is set when the requested page was past the end.
	Clamped bool
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.Count }

func pageCount(total, size int) int {
	if total == 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Paginate slices items into the requested 1-based page. Pages past the
// end clamp to the last page.
func Paginate(items []models.Profile, page, size int) (Page, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		return Page{}, ErrPageOutOfRange
	}

	count := pageCount(len(items), size)
	result := Page{Number: page, Size: size, Count: count, Total: len(items)}
	if page > count {
		result.Number = count
		result.Clamped = true
	}

	start := (result.Number - 1) * size
	end := min(start+size, len(items))
	result.Items = items[start:end]
	return result, nil
}
