// Package resolver builds the variable mapping used to template command
// strings.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Variables maps placeholder names to their substitution text.
type Variables map[string]string

// Resolve layers variable sources; later layers win:
//  1. config: the document's variables section
//  2. dotenv: entries of an optional dotenv file (may add new names)
//  3. environ: CHECKPOINT_VAR_<NAME> overrides for names known so far
func Resolve(config, dotenv map[string]string, environ []string) Variables {
	vars := make(Variables, len(config)+len(dotenv))
	for k, v := range config {
		vars[k] = v
	}
	for k, v := range dotenv {
		vars[k] = v
	}

	envMap := parseEnviron(environ)
	for name := range vars {
		if value, ok := envMap[NameToEnvVar(name)]; ok {
			vars[name] = value
		}
	}
	return vars
}

// LoadDotenv reads a dotenv file. An empty path yields no entries.
func LoadDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("resolver: read env file %s: %w", path, err)
	}
	return values, nil
}

// Placeholder returns the exact token replaced for name.
func Placeholder(name string) string {
	return "{{ " + name + " }}"
}

// Template replaces every "{{ name }}" for known names. Unknown placeholders
// and other spellings (e.g. "{{name}}") are left verbatim.
func (v Variables) Template(s string) string {
	if len(v) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, Placeholder(name), v[name])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// parseEnviron converts an environ slice (["KEY=VALUE", ...]) into a map.
// Handles edge cases like empty values ("KEY=") and values containing "=" ("KEY=a=b").
func parseEnviron(environ []string) map[string]string {
	result := make(map[string]string)
	for _, entry := range environ {
		// Split on first "=" only - values can contain "="
		idx := strings.Index(entry, "=")
		if idx == -1 {
			// No "=" found, skip malformed entry
			continue
		}
		key := entry[:idx]
		value := entry[idx+1:]
		result[key] = value
	}
	return result
}
