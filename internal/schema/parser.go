// Package schema loads the actions document that declares saves and their
// actions. YAML is the native format; a .toml file is read with the same
// layout.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the actions document is looked up when none is given.
const DefaultPath = "checkpoint_generator/actions.yaml"

// ErrEmptyDocument is returned for a blank actions file.
var ErrEmptyDocument = errors.New("schema: actions document is empty")

// Format is the encoding of an actions document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the decoder from the file extension. Anything that is not
// .toml is treated as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// yamlFile mirrors the document; saves stay a node so declaration order
// survives decoding.
type yamlFile struct {
	BaseTmpPath  string            `yaml:"base_tmp_path"`
	BaseMdPath   string            `yaml:"base_md_path"`
	BaseSavePath string            `yaml:"base_save_path"`
	Variables    map[string]string `yaml:"variables"`
	Saves        yaml.Node         `yaml:"saves"`
}

type yamlSave struct {
	SaveGit *bool       `yaml:"save_git"`
	Actions []yaml.Node `yaml:"actions"`
}

type tomlFile struct {
	BaseTmpPath  string              `toml:"base_tmp_path"`
	BaseMdPath   string              `toml:"base_md_path"`
	BaseSavePath string              `toml:"base_save_path"`
	Variables    map[string]any      `toml:"variables"`
	Saves        map[string]tomlSave `toml:"saves"`
}

type tomlSave struct {
	SaveGit *bool            `toml:"save_git"`
	Actions []map[string]any `toml:"actions"`
}

// Parse decodes an actions document. It does not validate required fields;
// see the validator package.
func Parse(content []byte, format Format) (Document, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return Document{}, ErrEmptyDocument
	}
	switch format {
	case FormatTOML:
		return parseTOML(content)
	default:
		return parseYAML(content)
	}
}

// LoadFile reads and parses the document at path.
func LoadFile(path string) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	doc, err := Parse(content, FormatFor(path))
	if err != nil {
		return Document{}, fmt.Errorf("schema: %s: %w", path, err)
	}
	return doc, nil
}

func parseYAML(content []byte) (Document, error) {
	var f yamlFile
	if err := yaml.Unmarshal(content, &f); err != nil {
		return Document{}, fmt.Errorf("invalid YAML: %w", err)
	}

	doc := Document{
		BaseTmpPath:  f.BaseTmpPath,
		BaseMdPath:   f.BaseMdPath,
		BaseSavePath: f.BaseSavePath,
		Variables:    f.Variables,
	}

	saves := &f.Saves
	if saves.Kind == 0 || isNull(saves) {
		return doc, nil
	}
	if saves.Kind != yaml.MappingNode {
		return Document{}, fmt.Errorf("'saves' must be a mapping (line %d)", saves.Line)
	}

	seen := make(map[string]bool, len(saves.Content)/2)
	for i := 0; i+1 < len(saves.Content); i += 2 {
		keyNode, valueNode := saves.Content[i], saves.Content[i+1]
		key := keyNode.Value
		if seen[key] {
			return Document{}, fmt.Errorf("duplicate save '%s' (line %d)", key, keyNode.Line)
		}
		seen[key] = true

		var raw yamlSave
		if !isNull(valueNode) {
			if err := valueNode.Decode(&raw); err != nil {
				return Document{}, fmt.Errorf("save '%s': %w", key, err)
			}
		}

		entry := SaveEntry{Key: key, SaveGit: raw.SaveGit}
		for idx := range raw.Actions {
			spec, err := yamlAction(&raw.Actions[idx])
			if err != nil {
				return Document{}, fmt.Errorf("save '%s': action %d: %w", key, idx, err)
			}
			entry.Actions = append(entry.Actions, spec)
		}
		doc.Saves = append(doc.Saves, entry)
	}
	return doc, nil
}

func yamlAction(n *yaml.Node) (ActionSpec, error) {
	if n.Kind != yaml.MappingNode {
		return ActionSpec{}, fmt.Errorf("must be a mapping (line %d)", n.Line)
	}
	keys := make([]string, 0, len(n.Content)/2)
	fields := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		var value any
		if err := n.Content[i+1].Decode(&value); err != nil {
			return ActionSpec{}, fmt.Errorf("field '%s': %w", key, err)
		}
		keys = append(keys, key)
		fields[key] = value
	}
	return NewActionSpec(keys, fields), nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func parseTOML(content []byte) (Document, error) {
	var f tomlFile
	md, err := toml.Decode(string(content), &f)
	if err != nil {
		return Document{}, fmt.Errorf("invalid TOML: %w", err)
	}

	doc := Document{
		BaseTmpPath:  f.BaseTmpPath,
		BaseMdPath:   f.BaseMdPath,
		BaseSavePath: f.BaseSavePath,
	}
	if len(f.Variables) > 0 {
		doc.Variables = make(map[string]string, len(f.Variables))
		for k, v := range f.Variables {
			doc.Variables[k] = fmt.Sprint(v)
		}
	}

	// MetaData.Keys lists keys in document order; saves.<key> gives the
	// declaration order the map lost.
	seen := make(map[string]bool, len(f.Saves))
	for _, k := range md.Keys() {
		if len(k) < 2 || k[0] != "saves" || seen[k[1]] {
			continue
		}
		seen[k[1]] = true
		raw := f.Saves[k[1]]
		entry := SaveEntry{Key: k[1], SaveGit: raw.SaveGit}
		for _, fields := range raw.Actions {
			entry.Actions = append(entry.Actions, NewActionSpec(nil, fields))
		}
		doc.Saves = append(doc.Saves, entry)
	}
	return doc, nil
}
