package category

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/sitesearch/internal/domain"
)

// Category is the content type tag of a search document.
type Category string

// Category constants.
const (
	Page       Category = "page"
	Service    Category = "service"
	Scheme     Category = "scheme"
	Form       Category = "form"
	FAQ        Category = "faq"
	Leadership Category = "leadership"
	Blog       Category = "blog"
	Calculator Category = "calculator"
	Contact    Category = "contact"
	About      Category = "about"
	Legal      Category = "legal"
	Career     Category = "career"
	Event      Category = "event"
	Download   Category = "download"
	// Other holds content types added after this list was fixed.
	Other Category = "other"
)

var all = []Category{
	Page, Service, Scheme, Form, FAQ, Leadership, Blog,
	Calculator, Contact, About, Legal, Career, Event, Download, Other,
}

var known = func() map[Category]struct{} {
	m := make(map[Category]struct{}, len(all))
	for _, c := range all {
		m[c] = struct{}{}
	}
	return m
}()

// IsValid checks if the category is one of the known tags.
func (c Category) IsValid() bool {
	_, ok := known[c]
	return ok
}

// String returns the tag value.
func (c Category) String() string { return string(c) }

// Parse converts a raw tag (case-insensitive, trimmed) to a Category.
func Parse(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCategory, s)
	}
	return c, nil
}

// ParseOrOther is Parse that maps unknown tags to Other.
// The second return value reports whether the tag was recognized.
func ParseOrOther(s string) (Category, bool) {
	c, err := Parse(s)
	if err != nil {
		return Other, false
	}
	return c, true
}

// All returns every known category in declaration order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}
