package schema

import (
	"fmt"
	"math"
	"sort"
)

// Layout selects how save keys map to markdown sources and save paths.
type Layout string

const (
	// LayoutMarkdown keys saves by markdown file (base_md_path is set).
	LayoutMarkdown Layout = "markdown"
	// LayoutSavePath keys saves by save directory (base_save_path is set).
	LayoutSavePath Layout = "save-path"
)

// Document is the parsed actions file.
type Document struct {
	BaseTmpPath  string            `yaml:"base_tmp_path" validate:"required"`
	BaseMdPath   string            `yaml:"base_md_path" validate:"required_without=BaseSavePath,excluded_with=BaseSavePath"`
	BaseSavePath string            `yaml:"base_save_path" validate:"required_without=BaseMdPath"`
	Variables    map[string]string `yaml:"variables"`
	Saves        []SaveEntry       `yaml:"-" validate:"-"`
}

// Layout reports which keying scheme the document uses.
func (d Document) Layout() Layout {
	if d.BaseSavePath != "" && d.BaseMdPath == "" {
		return LayoutSavePath
	}
	return LayoutMarkdown
}

// SaveEntry is one entry of the saves mapping, in declaration order.
type SaveEntry struct {
	Key     string       `yaml:"-" validate:"required"`
	SaveGit *bool        `yaml:"save_git" validate:"required"`
	Actions []ActionSpec `yaml:"-" validate:"-"`
}

// Git reports the save_git flag, false when unset.
func (s SaveEntry) Git() bool {
	return s.SaveGit != nil && *s.SaveGit
}

// ActionSpec is one undispatched action mapping. Keys keeps declaration
// order where the format preserves it.
type ActionSpec struct {
	Keys   []string
	Fields map[string]any
}

// NewActionSpec builds a spec from ordered keys and their values.
func NewActionSpec(keys []string, fields map[string]any) ActionSpec {
	return ActionSpec{Keys: keys, Fields: fields}
}

// Has reports whether key is present (even with a null value).
func (a ActionSpec) Has(key string) bool {
	_, ok := a.Fields[key]
	return ok
}

// FirstKey returns the first declared key, or "" for an empty mapping.
func (a ActionSpec) FirstKey() string {
	if len(a.Keys) > 0 {
		return a.Keys[0]
	}
	keys := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// String returns a string field. ok is false when the key is absent.
func (a ActionSpec) String(key string) (value string, ok bool, err error) {
	raw, ok := a.Fields[key]
	if !ok || raw == nil {
		return "", ok, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", true, fmt.Errorf("field '%s' must be a string, got %T", key, raw)
	}
	return s, true, nil
}

// Bool returns a boolean field, def when absent or null.
func (a ActionSpec) Bool(key string, def bool) (bool, error) {
	raw, ok := a.Fields[key]
	if !ok || raw == nil {
		return def, nil
	}
	b, isBool := raw.(bool)
	if !isBool {
		return false, fmt.Errorf("field '%s' must be a boolean, got %T", key, raw)
	}
	return b, nil
}

// Int returns an integer field. ok is false when the key is absent.
func (a ActionSpec) Int(key string) (value int, ok bool, err error) {
	raw, ok := a.Fields[key]
	if !ok || raw == nil {
		return 0, ok, nil
	}
	switch n := raw.(type) {
	case int:
		return n, true, nil
	case int64:
		if n > math.MaxInt32 || n < math.MinInt32 {
			return 0, true, fmt.Errorf("field '%s' is out of range: %d", key, n)
		}
		return int(n), true, nil
	case uint64:
		if n > math.MaxInt32 {
			return 0, true, fmt.Errorf("field '%s' is out of range: %d", key, n)
		}
		return int(n), true, nil
	default:
		return 0, true, fmt.Errorf("field '%s' must be an integer, got %T", key, raw)
	}
}
