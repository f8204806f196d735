package sitesearch

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

const tagKey = "sitesearch"

// Field roles recognised in `sitesearch:"..."` tags.
const (
	roleID          = "id"
	roleTitle       = "title"
	roleDescription = "description"
	roleContent     = "content"
	roleCategory    = "category"
	roleSubcategory = "subcategory"
	roleURL         = "url"
	roleKeywords    = "keywords"
	rolePriority    = "priority"
	roleUpdated     = "updated"
)

var timeType = reflect.TypeOf(time.Time{})

// schemaMeta maps struct fields to document roles, cached per TypedIndex.
type schemaMeta struct {
	typ   reflect.Type
	roles map[string]int // role → struct field index
}

// parseSchema reflects on T and extracts sitesearch struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("sitesearch: type parameter must be a struct")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("sitesearch: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, roles: make(map[string]int)}
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := meta.applyTag(i, f, tag); err != nil {
			return nil, err
		}
	}

	return validateSchema(meta)
}

// applyTag checks the field kind against its role and records it.
func (m *schemaMeta) applyTag(idx int, f reflect.StructField, tag string) error {
	role := strings.TrimSpace(strings.SplitN(tag, ",", 2)[0])
	if _, dup := m.roles[role]; dup {
		return fmt.Errorf("sitesearch: duplicate %s tag on field %s", role, f.Name)
	}
	if !f.IsExported() {
		return fmt.Errorf("sitesearch: field %s is unexported", f.Name)
	}

	switch role {
	case roleID, roleTitle, roleDescription, roleContent, roleCategory, roleSubcategory, roleURL:
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("sitesearch: %s field %s must be a string", role, f.Name)
		}
	case roleKeywords:
		if f.Type.Kind() != reflect.Slice || f.Type.Elem().Kind() != reflect.String {
			return fmt.Errorf("sitesearch: keywords field %s must be []string", f.Name)
		}
	case rolePriority:
		switch f.Type.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		default:
			return fmt.Errorf("sitesearch: priority field %s must be an integer", f.Name)
		}
	case roleUpdated:
		if f.Type != timeType {
			return fmt.Errorf("sitesearch: updated field %s must be time.Time", f.Name)
		}
	default:
		return fmt.Errorf("sitesearch: unknown role %q on field %s", role, f.Name)
	}

	m.roles[role] = idx
	return nil
}

func validateSchema(meta *schemaMeta) (*schemaMeta, error) {
	for _, required := range []string{roleID, roleTitle, roleCategory} {
		if _, ok := meta.roles[required]; !ok {
			return nil, fmt.Errorf("sitesearch: no field with `sitesearch:%q` tag in %s", required, meta.typ)
		}
	}
	return meta, nil
}

// toDocument converts a typed struct to Document using schema metadata.
func (m *schemaMeta) toDocument(item any) Document {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	str := func(role string) string {
		idx, ok := m.roles[role]
		if !ok {
			return ""
		}
		return v.Field(idx).String()
	}

	doc := Document{
		ID:          str(roleID),
		Title:       str(roleTitle),
		Description: str(roleDescription),
		Content:     str(roleContent),
		Category:    str(roleCategory),
		Subcategory: str(roleSubcategory),
		URL:         str(roleURL),
	}
	if idx, ok := m.roles[roleKeywords]; ok {
		kw := v.Field(idx)
		doc.Keywords = make([]string, kw.Len())
		for i := range kw.Len() {
			doc.Keywords[i] = kw.Index(i).String()
		}
	}
	if idx, ok := m.roles[rolePriority]; ok {
		doc.Priority = toInt(v.Field(idx))
	}
	if idx, ok := m.roles[roleUpdated]; ok {
		doc.LastUpdated, _ = v.Field(idx).Interface().(time.Time)
	}
	return doc
}

func toInt(v reflect.Value) int {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(v.Uint()) //nolint:gosec // priorities are 1-5
	default:
		return 0
	}
}
