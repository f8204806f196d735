// Package content holds the storage-neutral record shape shared by the
// file, Redis and SQL content sources.
package content

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
)

// DefaultPriority applies when a record carries no priority.
const DefaultPriority = document.MinPriority

// Record is one document as authored in a content store.
type Record struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Content     string   `yaml:"content,omitempty"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory,omitempty"`
	URL         string   `yaml:"url,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
	Priority    int      `yaml:"priority,omitempty"`
	LastUpdated string   `yaml:"last_updated,omitempty"`
}

// timeLayouts are the accepted last_updated formats.
var timeLayouts = []string{time.RFC3339, "2006-01-02"}

// ToDocument validates r into a domain document. Unknown categories fall back
// to category.Other with a warning; all other defects are errors.
func (r Record) ToDocument(logger *zap.Logger, source string) (document.Document, error) {
	cat, known := category.ParseOrOther(r.Category)
	if !known && logger != nil {
		logger.Warn("Unknown category, using other",
			zap.String("source", source),
			zap.String("id", r.ID),
			zap.String("category", r.Category),
		)
	}

	priority := r.Priority
	if priority == 0 {
		priority = DefaultPriority
	}

	var updated time.Time
	if s := strings.TrimSpace(r.LastUpdated); s != "" {
		t, err := parseTime(s)
		if err != nil {
			return document.Document{}, fmt.Errorf("%s: last_updated: %w", r.ID, err)
		}
		updated = t
	}

	return document.New(document.Fields{
		ID:          strings.TrimSpace(r.ID),
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		Category:    cat,
		Subcategory: r.Subcategory,
		URL:         r.URL,
		Keywords:    r.Keywords,
		Priority:    priority,
		LastUpdated: updated,
	})
}

// FromDocument converts a domain document back to its stored shape.
func FromDocument(d document.Document) Record {
	r := Record{
		ID:          d.ID(),
		Title:       d.Title(),
		Description: d.Description(),
		Content:     d.Content(),
		Category:    d.Category().String(),
		Subcategory: d.Subcategory(),
		URL:         d.URL(),
		Keywords:    d.Keywords(),
		Priority:    d.Priority(),
	}
	if !d.LastUpdated().IsZero() {
		r.LastUpdated = d.LastUpdated().UTC().Format(time.RFC3339)
	}
	return r
}

func parseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// SplitKeywords parses a stored keyword list: a JSON array as written by
// JoinKeywords, or a comma separated list as typed by hand.
func SplitKeywords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var list []string
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return list
		}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinKeywords encodes keywords as a JSON array so commas inside a keyword survive.
// No keywords encode as "".
func JoinKeywords(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	data, err := json.Marshal(keywords)
	if err != nil {
		return strings.Join(keywords, ",")
	}
	return string(data)
}
