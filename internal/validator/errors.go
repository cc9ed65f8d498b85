package validator

import (
	"fmt"
	"strings"
)

// ConfigError reports an actions document that failed validation.
type ConfigError struct {
	Result ValidationResult
}

func (e *ConfigError) Error() string {
	lines := FormatErrors(e.Result)
	if len(lines) == 1 {
		return "invalid configuration: " + lines[0]
	}
	return fmt.Sprintf("invalid configuration: %d error(s)\n  %s", len(lines), strings.Join(lines, "\n  "))
}

// FormatError formats a ValidationError into a human-readable error message.
// Format: "{key}: {message}"
func FormatError(err ValidationError) string {
	if err.Key == "" {
		return err.Message
	}
	return fmt.Sprintf("%s: %s", err.Key, err.Message)
}

// FormatErrors formats all validation errors into a slice of human-readable messages.
func FormatErrors(result ValidationResult) []string {
	messages := make([]string, len(result.Errors))
	for i, err := range result.Errors {
		messages[i] = FormatError(err)
	}
	return messages
}
