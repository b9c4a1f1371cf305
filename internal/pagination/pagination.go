// Package pagination computes page windows and navigation links over an
// ordered collection. Everything here is pure and safe for concurrent use.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage = 1
	DefaultSize = 10
)

// Window describes one page of a collection of Total items.
type Window struct {
	Page       int
	Size       int
	Total      int
	TotalPages int
	Offset     int
	Next       *string
	Previous   *string
}

// NewWindow computes the page window. page and size are taken as given;
// callers validate positivity. extra holds filter parameters appended to the
// navigation links after page and size.
func NewWindow(total, page, size int, baseURL string, extra url.Values) Window {
	w := Window{
		Page:  page,
		Size:  size,
		Total: total,
	}

	if total > 0 && size > 0 {
		w.TotalPages = total / size
		if total%size != 0 {
			w.TotalPages++
		}
	}

	// (page-1)*size can overflow for huge inputs; a page past the end starts at total.
	switch {
	case page < 1 || size < 1:
	case page-1 > total/size:
		w.Offset = total
	default:
		w.Offset = min((page-1)*size, total)
	}

	if page < w.TotalPages {
		link := pageLink(baseURL, page+1, size, extra)
		w.Next = &link
	}
	if page > 1 && w.TotalPages > 0 {
		link := pageLink(baseURL, page-1, size, extra)
		w.Previous = &link
	}

	return w
}

// Bounds returns the half-open slice range [start, end) of the window within
// a collection of w.Total items.
func (w Window) Bounds() (start, end int) {
	start = min(max(w.Offset, 0), w.Total)
	end = start + min(max(w.Size, 0), w.Total-start)
	return start, end
}

// Page is a window together with its items.
type Page[T any] struct {
	Window
	Items []T
}

// Paginate slices an already filtered and ordered collection. Items past the
// end of the collection yield an empty, non-nil slice.
func Paginate[T any](items []T, page, size int, baseURL string, extra url.Values) Page[T] {
	w := NewWindow(len(items), page, size, baseURL, extra)
	start, end := w.Bounds()

	out := make([]T, end-start)
	copy(out, items[start:end])

	return Page[T]{Window: w, Items: out}
}

func pageLink(baseURL string, page, size int, extra url.Values) string {
	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString("?page=")
	b.WriteString(strconv.Itoa(page))
	b.WriteString("&size=")
	b.WriteString(strconv.Itoa(size))
	if len(extra) > 0 {
		b.WriteByte('&')
		b.WriteString(extra.Encode())
	}
	return b.String()
}

// BaseURL returns the request URL reduced to scheme, host and path.
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path}
	return u.String()
}
