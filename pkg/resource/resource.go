// Package resource renders models as hyperlinked JSON.
//
// Every representation carries its own absolute `url`, references to other
// resources are URLs too, and lists are wrapped in a page:
//
//	l := resource.NewLinker(c.BaseURL())
//	resource.Map{
//	    "url":     l.URL("products", p.ID),
//	    "vendor":  l.URL("users", p.VendorID),
//	    "category": l.Ref("categories", p.CategoryID),
//	}
//
// Incoming references are parsed back with Ref.ID, which accepts an absolute
// URL, a path or a bare id.
package resource

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Map is a convenient alias for a rendered representation.
type Map = map[string]interface{}

// Transformer renders one model.
type Transformer[T any] func(l Linker, v *T) Map

// Collection renders every item with fn.
func Collection[T any](l Linker, items []T, fn Transformer[T]) []Map {
	out := make([]Map, 0, len(items))
	for i := range items {
		out = append(out, fn(l, &items[i]))
	}
	return out
}

// ------------------- Links -------------------

// Linker builds absolute URLs below a base such as "https://shop.example.com".
type Linker struct {
	base string
}

// NewLinker returns a Linker rooted at base.
func NewLinker(base string) Linker {
	return Linker{base: strings.TrimRight(base, "/")}
}

// Collection returns the URL of a collection, e.g. ".../products/".
func (l Linker) Collection(name string) string {
	return l.base + "/" + name + "/"
}

// URL returns the URL of one object, e.g. ".../products/3/".
func (l Linker) URL(collection string, id uint) string {
	return l.base + "/" + collection + "/" + strconv.FormatUint(uint64(id), 10) + "/"
}

// Ref renders a nullable reference as a URL or JSON null.
func (l Linker) Ref(collection string, id *uint) interface{} {
	if id == nil || *id == 0 {
		return nil
	}
	return l.URL(collection, *id)
}

// Filter returns a collection URL filtered by one query parameter, e.g.
// ".../products/?category=2".
func (l Linker) Filter(collection, key string, id uint) string {
	return l.Collection(collection) + "?" + key + "=" + strconv.FormatUint(uint64(id), 10)
}

// ------------------- Incoming references -------------------

// ErrInvalidHyperlink is returned when a reference does not name an object
// of the expected collection.
var ErrInvalidHyperlink = errors.New("Invalid hyperlink - No URL match.")

// Ref is a reference as sent by a client. JSON strings and numbers are both
// accepted.
type Ref string

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Ref(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = Ref(n.String())
	return nil
}

// ID parses the reference into the id of an object in collection.
func (r Ref) ID(collection string) (uint, error) {
	return ParseRef(collection, string(r))
}

// ParseRef accepts "https://host/products/3/", "/products/3" or "3".
func ParseRef(collection, raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidHyperlink
	}
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
		if id == 0 {
			return 0, ErrInvalidHyperlink
		}
		return uint(id), nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return 0, ErrInvalidHyperlink
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] != collection {
		return 0, ErrInvalidHyperlink
	}
	id, err := strconv.ParseUint(parts[len(parts)-1], 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidHyperlink
	}
	return uint(id), nil
}

// ------------------- Pagination -------------------

// Page is the list envelope: {"count", "next", "previous", "results"}.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// NewPage builds a Page for the request URL self, linking neighbouring pages
// by rewriting its page parameter.
func NewPage(self *url.URL, page, size int, total int64, results interface{}) Page {
	p := Page{Count: total, Results: results}
	if int64(page*size) < total {
		next := pageURL(self, page+1)
		p.Next = &next
	}
	if page > 1 {
		prev := pageURL(self, page-1)
		p.Previous = &prev
	}
	return p
}

func pageURL(self *url.URL, page int) string {
	u := *self
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
