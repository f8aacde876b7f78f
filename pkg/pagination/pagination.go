package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse extracts and validates page/limit from query parameters
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Window describes one page of an in-memory list
type Window struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
	Start      int // inclusive slice bound
	End        int // exclusive slice bound
}

func (w Window) HasPrev() bool { return w.Page > 1 }
func (w Window) HasNext() bool { return w.Page < w.TotalPages }
func (w Window) PrevPage() int { return w.Page - 1 }
func (w Window) NextPage() int { return w.Page + 1 }

// NewWindow clamps p to a list of total items; a page past the end shows the last page
func NewWindow(p Params, total int) Window {
	if p.Limit < MinLimit {
		p.Limit = DefaultLimit
	}
	pages := (total + p.Limit - 1) / p.Limit
	if pages < 1 {
		pages = 1
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * p.Limit
	end := start + p.Limit
	if end > total {
		end = total
	}
	return Window{Page: page, Limit: p.Limit, Total: total, TotalPages: pages, Start: start, End: end}
}

// Slice returns the items of the window
func Slice[T any](items []T, w Window) []T {
	if w.Start >= len(items) {
		return nil
	}
	end := w.End
	if end > len(items) {
		end = len(items)
	}
	return items[w.Start:end]
}
