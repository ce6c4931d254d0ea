package form

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Validator is an interface for form field validation.
type Validator interface {
	// Validate checks if the value is valid.
	// Returns nil if valid, or an error with a message if invalid.
	Validate(value any) error
}

// ValidatorFunc is a function that implements Validator.
type ValidatorFunc func(value any) error

func (f ValidatorFunc) Validate(value any) error {
	return f(value)
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ----------------------------------------------------------------------------
// String Validators
// ----------------------------------------------------------------------------

// Required validates that the value is non-empty.
func Required(msg string) Validator {
	if msg == "" {
		msg = "This field is required"
	}
	return ValidatorFunc(func(value any) error {
		if isEmpty(value) {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// MinLength validates that a string has at least n characters.
func MinLength(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("Must be at least %d characters", n)
	}
	return ValidatorFunc(func(value any) error {
		s := toString(value)
		if s == "" {
			return nil // Let Required handle empty values
		}
		if len([]rune(s)) < n {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// MaxLength validates that a string has at most n characters.
func MaxLength(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("Must be at most %d characters", n)
	}
	return ValidatorFunc(func(value any) error {
		s := toString(value)
		if len([]rune(s)) > n {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// Pattern validates that a string matches the given regular expression.
func Pattern(pattern string, msg string) Validator {
	re := regexp.MustCompile(pattern)
	if msg == "" {
		msg = "Invalid format"
	}
	return ValidatorFunc(func(value any) error {
		s := toString(value)
		if s == "" {
			return nil
		}
		if !re.MatchString(s) {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// emailPattern accepts a local part of letters, digits and _'+-. ending in a
// character other than ' or ., and a dotted domain with a TLD of two or more
// letters.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_'+\-.]*[A-Za-z0-9_+-]@([A-Za-z0-9][A-Za-z0-9-]*\.)+[A-Za-z]{2,}$`)

// Email validates that the value is a valid email address. The address may
// not start with a dot or contain two consecutive dots.
func Email(msg string) Validator {
	if msg == "" {
		msg = "Invalid email address"
	}
	return ValidatorFunc(func(value any) error {
		s := toString(value)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, ".") || strings.Contains(s, "..") || !emailPattern.MatchString(s) {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// OneOf validates that the value is one of allowed.
func OneOf(allowed []string, msg string) Validator {
	if msg == "" {
		msg = "Must be one of: " + strings.Join(allowed, ", ")
	}
	return ValidatorFunc(func(value any) error {
		if isNil(value) {
			return nil
		}
		if !slices.Contains(allowed, toString(value)) {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// ----------------------------------------------------------------------------
// Custom Validators
// ----------------------------------------------------------------------------

// Custom creates a validator from a custom function.
func Custom(fn func(value any) error) Validator {
	return ValidatorFunc(fn)
}

// ----------------------------------------------------------------------------
// Helper Functions
// ----------------------------------------------------------------------------

// isNil reports nil interfaces and nil pointers.
func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// deref follows non-nil pointers.
func deref(value any) any {
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// isEmpty checks if a value is considered empty.
func isEmpty(value any) bool {
	value = deref(value)
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return len(v) == 0
	default:
		return false // 0 and false are values
	}
}

// toString converts a value to a string.
func toString(value any) string {
	value = deref(value)
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// validatorFromTag creates a validator from a tag name and value.
func validatorFromTag(name, value string) Validator {
	switch name {
	case "required":
		return Required("")
	case "min", "minlen":
		if n, err := strconv.Atoi(value); err == nil {
			return MinLength(n, "")
		}
	case "max", "maxlen":
		if n, err := strconv.Atoi(value); err == nil {
			return MaxLength(n, "")
		}
	case "email":
		return Email("")
	case "pattern", "regex":
		return Pattern(value, "")
	case "oneof":
		return OneOf(strings.Fields(value), "")
	}
	return nil
}

// parseValidateTag parses a validate tag string into validators.
func parseValidateTag(tag string) []Validator {
	if tag == "" {
		return nil
	}

	rules := strings.Split(tag, ",")
	validators := make([]Validator, 0, len(rules))

	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}

		// Parse rule=value format
		ruleName, ruleValue, _ := strings.Cut(rule, "=")

		if v := validatorFromTag(ruleName, ruleValue); v != nil {
			validators = append(validators, v)
		}
	}

	return validators
}
