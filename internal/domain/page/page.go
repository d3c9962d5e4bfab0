// Package page carries offset pagination requests and results between the
// HTTP layer, the services and the repositories.
package page

import (
	"math"
	"strings"
)

const (
	DefaultSize = 20
	MaxSize     = 100

	// MaxOffset bounds the rows a request may skip so Number*Size never
	// overflows.
	MaxOffset = math.MaxInt32
)

// Order sorts by one property.
type Order struct {
	Property string
	Desc     bool
}

// Request asks for one zero-based page.
type Request struct {
	Number int
	Size   int
	Sort   []Order
}

// Of builds a request, clamping out-of-range values to sane defaults.
func Of(number, size int, sort ...Order) Request {
	if number < 0 {
		number = 0
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	if number > MaxOffset/size {
		number = MaxOffset / size
	}
	return Request{Number: number, Size: size, Sort: sort}
}

// Offset is the number of rows skipped before this page.
func (r Request) Offset() int {
	if r.Number <= 0 || r.Size <= 0 {
		return 0
	}
	if r.Number > MaxOffset/r.Size {
		return MaxOffset
	}
	return r.Number * r.Size
}

// ParseSort reads Spring-style sort parameters ("name,desc") and keeps only
// the properties present in allowed. The map value is the backing column.
func ParseSort(values []string, allowed map[string]string) []Order {
	var orders []Order
	for _, v := range values {
		parts := strings.Split(v, ",")
		prop := strings.TrimSpace(parts[0])
		if _, ok := allowed[prop]; !ok {
			continue
		}
		desc := len(parts) > 1 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc")
		orders = append(orders, Order{Property: prop, Desc: desc})
	}
	return orders
}

// Page is one slice of a larger result set.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// New assembles a page from its content and the total row count.
func New[T any](content []T, req Request, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	size := req.Size
	if size <= 0 {
		size = DefaultSize
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        req.Number,
		Size:          size,
		First:         req.Number == 0,
		Last:          req.Number >= totalPages-1,
	}
}

// Map converts the content of a page, keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		out = append(out, fn(item))
	}
	return Page[U]{
		Content:       out,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Number:        p.Number,
		Size:          p.Size,
		First:         p.First,
		Last:          p.Last,
	}
}

// Slice cuts an already sorted in-memory list down to the requested page.
func Slice[T any](items []T, req Request) Page[T] {
	total := int64(len(items))
	start := req.Offset()
	if start < 0 {
		start = 0
	}
	if start > len(items) {
		start = len(items)
	}
	end := start + req.Size
	if req.Size <= 0 || end > len(items) {
		end = len(items)
	}
	return New(append([]T(nil), items[start:end]...), req, total)
}
