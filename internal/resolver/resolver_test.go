package resolver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Basic(t *testing.T) {
	vars := Variables{"name": "x"}
	assert.Equal(t, "echo x", vars.Template("echo {{ name }}"))
}

func TestTemplate_LeavesUnknownAndOtherSpellings(t *testing.T) {
	vars := Variables{"name": "x"}
	assert.Equal(t, "echo {{ other }} {{name}} {{  name  }} x",
		vars.Template("echo {{ other }} {{name}} {{  name  }} {{ name }}"))
}

func TestTemplate_MultipleAndRepeated(t *testing.T) {
	vars := Variables{"py": "3.11", "pkg": "planets"}
	got := vars.Template("uv venv -p {{ py }} && uv add {{ pkg }} && echo {{ py }}")
	assert.Equal(t, "uv venv -p 3.11 && uv add planets && echo 3.11", got)
}

func TestTemplate_ValuesAreNotRetemplated(t *testing.T) {
	vars := Variables{"a": "{{ b }}", "b": "B"}
	assert.Equal(t, "{{ b }} B", vars.Template("{{ a }} {{ b }}"))
}

func TestTemplate_EmptyVariables(t *testing.T) {
	var vars Variables
	assert.Equal(t, "echo {{ name }}", vars.Template("echo {{ name }}"))
}

func TestResolve_Layers(t *testing.T) {
	config := map[string]string{"python_version": "3.10", "project": "demo"}
	dotenv := map[string]string{"project": "from-dotenv", "token": "abc"}
	environ := []string{
		"CHECKPOINT_VAR_PYTHON_VERSION=3.12",
		"CHECKPOINT_VAR_UNKNOWN=ignored",
		"PATH=/usr/bin",
		"MALFORMED",
	}

	vars := Resolve(config, dotenv, environ)
	assert.Equal(t, Variables{
		"python_version": "3.12",
		"project":        "from-dotenv",
		"token":          "abc",
	}, vars)
}

func TestResolve_EmptyEnvValueOverrides(t *testing.T) {
	vars := Resolve(map[string]string{"flag": "on"}, nil, []string{"CHECKPOINT_VAR_FLAG="})
	assert.Equal(t, "", vars["flag"])
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nNAME=planets\nQUOTED=\"a b\"\n"), 0644))

	values, err := LoadDotenv(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"NAME": "planets", "QUOTED": "a b"}, values)

	values, err = LoadDotenv("")
	require.NoError(t, err)
	assert.Nil(t, values)

	_, err = LoadDotenv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestNameToEnvVar(t *testing.T) {
	assert.Equal(t, "CHECKPOINT_VAR_PYTHON_VERSION", NameToEnvVar("python_version"))
	assert.Equal(t, "CHECKPOINT_VAR_APP_PORT", NameToEnvVar("app.port"))
	assert.Equal(t, "CHECKPOINT_VAR_MY_VAR", NameToEnvVar("my-var"))
	assert.Equal(t, "", NameToEnvVar(""))
}

func TestParseEnviron(t *testing.T) {
	got := parseEnviron([]string{"A=1", "B=", "C=x=y", "bad"})
	assert.Equal(t, map[string]string{"A": "1", "B": "", "C": "x=y"}, got)
}

func TestTemplate_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("placeholder is replaced by its value", prop.ForAll(
		func(name, value, prefix, suffix string) bool {
			vars := Variables{name: value}
			got := vars.Template(prefix + Placeholder(name) + suffix)
			return got == prefix+value+suffix
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("strings without placeholders are unchanged", prop.ForAll(
		func(name, value, s string) bool {
			if strings.Contains(s, "{{") {
				return true
			}
			return Variables{name: value}.Template(s) == s
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.AnyString(),
	))

	properties.Property("unknown placeholders survive", prop.ForAll(
		func(known, unknown string) bool {
			if known == unknown {
				return true
			}
			in := "run " + Placeholder(unknown)
			return Variables{known: "v"}.Template(in) == in
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
