// Package validator checks a parsed actions document for missing or
// conflicting fields before anything runs.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"

	"checkpoint/internal/schema"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Key     string // Dotted document path (e.g., "saves.01-intro.md.save_git")
	Rule    string // The failing rule (e.g., "required")
	Message string // Human-readable error message
}

// ValidationResult contains all validation outcomes
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

var (
	engineOnce sync.Once
	engine     *playground.Validate
)

func validate() *playground.Validate {
	engineOnce.Do(func() {
		engine = playground.New(playground.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(yamlName)
	})
	return engine
}

// yamlName reports fields by their document spelling.
func yamlName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Validate checks the document and every save entry.
// It collects all errors rather than stopping at the first one.
func Validate(doc schema.Document) ValidationResult {
	var errs []ValidationError

	errs = append(errs, structErrors(doc, "")...)
	for i, save := range doc.Saves {
		prefix := "saves." + save.Key
		if save.Key == "" {
			prefix = fmt.Sprintf("saves[%d]", i)
		}
		errs = append(errs, structErrors(save, prefix)...)
	}

	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// Check validates doc and returns a *ConfigError when anything is wrong.
func Check(doc schema.Document) error {
	result := Validate(doc)
	if result.Valid {
		return nil
	}
	return &ConfigError{Result: result}
}

func structErrors(v any, prefix string) []ValidationError {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Key: prefix, Rule: "invalid", Message: err.Error()}}
	}

	t := reflect.TypeOf(v)
	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fe.Field()
		if prefix != "" {
			key = prefix + "." + key
		}
		out = append(out, ValidationError{
			Key:     key,
			Rule:    fe.Tag(),
			Message: describe(t, fe),
		})
	}
	return out
}

func describe(t reflect.Type, fe playground.FieldError) string {
	other := fe.Param()
	if f, ok := t.FieldByName(other); ok {
		other = yamlName(f)
	}
	switch fe.Tag() {
	case "required":
		return "required"
	case "required_without":
		return "required when " + other + " is not set"
	case "excluded_with":
		return "cannot be combined with " + other
	default:
		return "failed rule " + fe.Tag()
	}
}
