// Package pagination models page requests and page results shared by the
// storage accessors and the HTTP layer.
//
// A PageRequest is the explicit "which slice do you want" configuration:
// zero-based page index, page size, and an ordered list of sort orders.
// A Page is the slice that came back plus the total count needed to build
// pagination headers.
package pagination

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	// DefaultPage is the page index used when none (or an invalid one) is given.
	DefaultPage = 0

	// DefaultSize is the page size used when none (or an invalid one) is given.
	DefaultSize = 20

	// MaxSize caps the page size a client may ask for.
	MaxSize = 2000
)

// Direction is the sort direction of a single Order.
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// ParseDirection parses "asc"/"desc" case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ASC):
		return ASC, true
	case string(DESC):
		return DESC, true
	}
	return "", false
}

// Order sorts by one property in one direction.
type Order struct {
	Property  string
	Direction Direction
}

// IsDescending reports whether the order is descending.
func (o Order) IsDescending() bool {
	return o.Direction == DESC
}

// PageRequest describes which page of a result set to return and how the
// full result set is ordered before slicing.
type PageRequest struct {
	Page int
	Size int
	Sort []Order
}

// NewPageRequest builds a PageRequest, replacing out-of-range values with
// defaults. Negative pages fall back to DefaultPage, non-positive sizes fall
// back to DefaultSize and sizes above MaxSize are capped.
func NewPageRequest(page, size int, sort []Order) PageRequest {
	if page < 0 {
		page = DefaultPage
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	// Keep Offset and Offset+Size within range. A page this far out is past
	// the end of any real result set anyway.
	if maxPage := math.MaxInt/size - 1; page > maxPage {
		page = maxPage
	}
	return PageRequest{Page: page, Size: size, Sort: sort}
}

// Offset returns the number of records to skip.
func (p PageRequest) Offset() int64 {
	return int64(p.Page) * int64(p.Size)
}

// ParseInt parses a page or size query value. Empty or malformed values
// yield fallback instead of an error, matching how listing endpoints treat
// garbage pagination input.
func ParseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// ParseSort parses repeated sort parameters of the form "prop[,prop...][,asc|desc]".
//
// When the last comma-separated token is a direction it applies to every
// property before it; otherwise all tokens are properties sorted ascending.
// Empty tokens are ignored.
func ParseSort(values []string) []Order {
	var orders []Order
	for _, value := range values {
		var tokens []string
		for _, t := range strings.Split(value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tokens = append(tokens, t)
			}
		}
		if len(tokens) == 0 {
			continue
		}

		direction := ASC
		if d, ok := ParseDirection(tokens[len(tokens)-1]); ok {
			direction = d
			tokens = tokens[:len(tokens)-1]
		}

		for _, property := range tokens {
			orders = append(orders, Order{Property: property, Direction: direction})
		}
	}
	return orders
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
}

// NewPage assembles a page for req. A nil content slice is normalized to an
// empty one so it serializes as [] rather than null.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		Number:        req.Page,
		Size:          req.Size,
		TotalElements: total,
	}
}

// TotalPages is the number of pages needed to hold TotalElements.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 1
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages()
}

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool {
	return p.Number > 0
}

const (
	// TotalCountHeader carries the size of the full result set.
	TotalCountHeader = "X-Total-Count"

	// TotalPagesHeader carries the number of pages at the current size.
	TotalPagesHeader = "X-Total-Pages"

	// LinkHeader carries RFC 5988 links to the first, last, next and previous pages.
	LinkHeader = "Link"
)

// Headers builds the pagination response headers for page, with links
// relative to baseURL (e.g. "/api/form-v-1-s").
func Headers[T any](page Page[T], baseURL string) http.Header {
	headers := http.Header{}
	headers.Set(TotalCountHeader, strconv.FormatInt(page.TotalElements, 10))
	headers.Set(TotalPagesHeader, strconv.Itoa(page.TotalPages()))

	var links []string
	if page.HasNext() {
		links = append(links, link(baseURL, page.Number+1, page.Size, "next"))
	}
	if page.HasPrevious() {
		links = append(links, link(baseURL, page.Number-1, page.Size, "prev"))
	}

	lastPage := 0
	if page.TotalPages() > 0 {
		lastPage = page.TotalPages() - 1
	}
	links = append(links,
		link(baseURL, lastPage, page.Size, "last"),
		link(baseURL, 0, page.Size, "first"),
	)

	headers.Set(LinkHeader, strings.Join(links, ","))
	return headers
}

func link(baseURL string, page, size int, rel string) string {
	return fmt.Sprintf(`<%s?page=%d&size=%d>; rel="%s"`, baseURL, page, size, rel)
}
