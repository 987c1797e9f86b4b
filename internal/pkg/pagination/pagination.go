// Package pagination holds the page request/response types used by the
// repositories and the helpers that drive the page bar and the one-article
// detail navigation.
package pagination

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
)

// BarLength is the number of page links shown in the pagination bar.
const BarLength = 5

const (
	// MaxPageSize caps the size a client may request.
	MaxPageSize = 100
	// MaxPageNumber caps the page number so that Number*Size fits an int32
	// for every allowed size.
	MaxPageNumber = math.MaxInt32 / MaxPageSize

	detailPath = "/articles/detail"
	noLink     = "#"
)

// Pageable is a zero-based page request.
type Pageable struct {
	Number int
	Size   int
}

// Offset returns the number of rows skipped before this page. It saturates
// at math.MaxInt32 instead of overflowing.
func (p Pageable) Offset() int {
	if p.Size <= 0 || p.Number <= 0 {
		return 0
	}
	if pos, ok := p.position(0); ok {
		return pos
	}
	return math.MaxInt32
}

// position is the global zero-based index of the index-th item on the page.
// It is false when Size is not positive or the result would pass
// math.MaxInt32.
func (p Pageable) position(index int) (int, bool) {
	if p.Size <= 0 || p.Number < 0 || index < 0 {
		return 0, false
	}
	if p.Number > (math.MaxInt32-index)/p.Size {
		return 0, false
	}
	return p.Number*p.Size + index, true
}

// Of builds a Pageable, normalizing negative numbers and sizes and capping
// the number at MaxPageNumber.
func Of(number, size int) Pageable {
	number = min(max(number, 0), MaxPageNumber)
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Pageable{Number: number, Size: size}
}

// ParsePageable reads "page" and "size" from a query string.
func ParsePageable(query url.Values, defaultSize int) Pageable {
	number, err := strconv.Atoi(query.Get("page"))
	if err != nil {
		number = 0
	}
	size, err := strconv.Atoi(query.Get("size"))
	if err != nil || query.Get("size") == "" {
		size = defaultSize
	}
	return Of(number, size)
}

// Page is one slice of a larger result set.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
}

// NewPage wraps content for the given request.
func NewPage[T any](content []T, p Pageable, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{Content: content, Number: p.Number, Size: p.Size, TotalElements: total}
}

// Empty returns a page with no content and no total.
func Empty[T any](p Pageable) Page[T] {
	return NewPage[T](nil, p, 0)
}

// TotalPages rounds up TotalElements / Size.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages()
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 0
}

// Map converts page content while keeping the paging metadata.
func Map[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := make([]R, len(p.Content))
	for i, v := range p.Content {
		out[i] = fn(v)
	}
	return Page[R]{Content: out, Number: p.Number, Size: p.Size, TotalElements: p.TotalElements}
}

// BarNumbers returns the zero-based page numbers to render around current.
// The window starts BarLength/2 before current and never runs past totalPages.
func BarNumbers(current, totalPages int) []int {
	start := max(current-BarLength/2, 0)
	end := min(start+BarLength, totalPages)
	if end <= start {
		return []int{}
	}
	nums := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		nums = append(nums, i)
	}
	return nums
}

// PreviousURI points at the article just before articleIndex on page,
// stepping back to the last slot of the previous page when needed.
func PreviousURI(articleIndex int, page Pageable) string {
	pos, ok := page.position(articleIndex)
	if !ok || pos <= 0 {
		return noLink
	}
	return DetailURI(pos-1, page.Size)
}

// NextURI points at the article after articleIndex on page, or "#" when
// articleIndex is already the last of total articles.
func NextURI(articleIndex int, page Pageable, total int64) string {
	pos, ok := page.position(articleIndex)
	if !ok || int64(pos)+1 >= total {
		return noLink
	}
	return DetailURI(pos+1, page.Size)
}

// DetailURI builds the detail link for a global, zero-based article position.
func DetailURI(position, size int) string {
	return fmt.Sprintf("%s?articleIndex=%d&page=%d", detailPath, position%size, position/size)
}
