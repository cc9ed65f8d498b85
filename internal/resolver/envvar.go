package resolver

import "strings"

// EnvPrefix marks process environment entries that override variables.
const EnvPrefix = "CHECKPOINT_VAR_"

// NameToEnvVar converts a variable name to the environment variable that
// overrides it.
// e.g., "python_version" -> "CHECKPOINT_VAR_PYTHON_VERSION", "app.port" -> "CHECKPOINT_VAR_APP_PORT"
func NameToEnvVar(name string) string {
	if name == "" {
		return ""
	}
	r := strings.NewReplacer(".", "_", "-", "_")
	return EnvPrefix + strings.ToUpper(r.Replace(name))
}
