package document

import (
	"fmt"
	"iter"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/sitesearch/internal/domain"
	"github.com/kailas-cloud/sitesearch/internal/domain/category"
)

// Priority bounds.
const (
	MinPriority = 1
	MaxPriority = 5
)

// MaxIDLength is the maximum document ID length in bytes.
const MaxIDLength = 256

// Fields carries raw document attributes into New and Reconstruct.
type Fields struct {
	ID          string
	Title       string
	Description string
	Content     string
	Category    category.Category
	Subcategory string
	URL         string
	Keywords    []string
	Priority    int
	LastUpdated time.Time
}

// Document is one searchable record (immutable value object).
type Document struct {
	id          string
	title       string
	description string
	content     string
	category    category.Category
	subcategory string
	url         string
	keywords    []string
	priority    int
	lastUpdated time.Time
}

// New validates and creates a Document.
// ID and title are required, category must be a known tag, priority must be 1-5.
// Keywords are lower-cased, trimmed and de-duplicated in first-seen order.
func New(f Fields) (Document, error) {
	if strings.TrimSpace(f.ID) == "" {
		return Document{}, fmt.Errorf("%w: id is required", domain.ErrInvalidDocument)
	}
	if len(f.ID) > MaxIDLength {
		return Document{}, fmt.Errorf("%w: id too long (max %d)", domain.ErrInvalidDocument, MaxIDLength)
	}
	if strings.TrimSpace(f.Title) == "" {
		return Document{}, fmt.Errorf("%w: %s: title is required", domain.ErrInvalidDocument, f.ID)
	}
	if !f.Category.IsValid() {
		return Document{}, fmt.Errorf("%w: %s: unknown category %q", domain.ErrInvalidDocument, f.ID, f.Category)
	}
	if f.Priority < MinPriority || f.Priority > MaxPriority {
		return Document{}, fmt.Errorf("%w: %s: priority must be between %d and %d, got %d",
			domain.ErrInvalidDocument, f.ID, MinPriority, MaxPriority, f.Priority)
	}

	f.Keywords = NormalizeKeywords(f.Keywords)
	return Reconstruct(f), nil
}

// Reconstruct creates a Document without validation (trusted hydration).
func Reconstruct(f Fields) Document {
	return Document{
		id:          f.ID,
		title:       f.Title,
		description: f.Description,
		content:     f.Content,
		category:    f.Category,
		subcategory: f.Subcategory,
		url:         f.URL,
		keywords:    cloneStrings(f.Keywords),
		priority:    f.Priority,
		lastUpdated: f.LastUpdated,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the heading.
func (d *Document) Title() string { return d.title }

// Description returns the short summary.
func (d *Document) Description() string { return d.description }

// Content returns the long body text (may be empty).
func (d *Document) Content() string { return d.content }

// Category returns the content type tag.
func (d *Document) Category() category.Category { return d.category }

// Subcategory returns the free-text refinement.
func (d *Document) Subcategory() string { return d.subcategory }

// URL returns the target locator.
func (d *Document) URL() string { return d.url }

// Keywords returns a copy of the normalized keywords.
func (d *Document) Keywords() []string { return cloneStrings(d.keywords) }

// Priority returns the editorial importance (1-5).
func (d *Document) Priority() int { return d.priority }

// LastUpdated returns the informational update time (zero if unset).
func (d *Document) LastUpdated() time.Time { return d.lastUpdated }

// TitleLength returns the title length in runes.
func (d *Document) TitleLength() int { return utf8.RuneCountInString(d.title) }

// AllKeywords iterates keywords without copying them.
func (d *Document) AllKeywords() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, k := range d.keywords {
			if !yield(k) {
				return
			}
		}
	}
}

// Fields returns the raw attributes of the document.
func (d *Document) Fields() Fields {
	return Fields{
		ID:          d.id,
		Title:       d.title,
		Description: d.description,
		Content:     d.content,
		Category:    d.category,
		Subcategory: d.subcategory,
		URL:         d.url,
		Keywords:    cloneStrings(d.keywords),
		Priority:    d.priority,
		LastUpdated: d.lastUpdated,
	}
}

// NormalizeKeywords lower-cases keywords and collapses their whitespace,
// dropping empties and duplicates.
func NormalizeKeywords(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.Join(strings.Fields(strings.ToLower(k)), " ")
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
