package form

import (
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Errors maps field names to their validation messages.
type Errors map[string][]string

// Add records msg for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Err returns nil when there are no errors, or an *Error wrapping e.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return &Error{Fields: e}
}

// Error is the error form of a failed record validation.
type Error struct {
	Fields Errors
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, f+": "+strings.Join(e.Fields[f], ", "))
	}
	return "invalid " + strings.Join(parts, "; ")
}

// fieldMeta stores metadata extracted from struct tags.
type fieldMeta struct {
	name       string
	index      int
	validators []Validator
}

// Schema validates values of the struct type T field by field.
//
// Each field runs its validators in order and stops at the first failure.
// Failures across fields are collected, so one pass reports every invalid
// field.
type Schema[T any] struct {
	fields []fieldMeta
	mu     sync.RWMutex
}

// NewSchema builds a Schema from the form and validate tags of T.
//
//	type Signup struct {
//	    Name  string `form:"name" validate:"required,max=50"`
//	    Email string `form:"email" validate:"required,email"`
//	}
func NewSchema[T any]() *Schema[T] {
	s := &Schema[T]{}
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return s
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		// Get form tag or use lowercase field name
		name := field.Tag.Get("form")
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		if name == "-" {
			continue
		}

		s.fields = append(s.fields, fieldMeta{
			name:       name,
			index:      i,
			validators: parseValidateTag(field.Tag.Get("validate")),
		})
	}
	return s
}

// Rule replaces the validators of field. Use it for custom messages or
// checks a tag cannot express.
func (s *Schema[T]) Rule(field string, validators ...Validator) *Schema[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fields {
		if s.fields[i].name == field {
			s.fields[i].validators = slices.Clone(validators)
		}
	}
	return s
}

// Validate normalizes v and checks every field. It returns the normalized
// value together with the errors; the value is only meaningful when the
// errors are empty.
func (s *Schema[T]) Validate(v T) (T, Errors) {
	out := Normalize(v)
	rv := reflect.ValueOf(&out).Elem()
	errs := Errors{}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if rv.Kind() != reflect.Struct {
		return out, errs
	}

	for _, f := range s.fields {
		value := rv.Field(f.index).Interface()
		for _, validator := range f.validators {
			if err := validator.Validate(value); err != nil {
				errs.Add(f.name, message(err))
				break
			}
		}
	}
	return out, errs
}

// Normalize returns a copy of v with surrounding whitespace trimmed from
// every exported string and *string field.
func Normalize[T any](v T) T {
	out := v
	rv := reflect.ValueOf(&out).Elem()
	if rv.Kind() != reflect.Struct {
		return out
	}

	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}
		switch {
		case field.Kind() == reflect.String:
			field.SetString(strings.TrimSpace(field.String()))
		case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.String && !field.IsNil():
			trimmed := strings.TrimSpace(field.Elem().String())
			p := reflect.New(field.Type().Elem())
			p.Elem().SetString(trimmed)
			field.Set(p)
		}
	}
	return out
}

// ValidateStruct validates v against the tags of its type.
func ValidateStruct[T any](v T) (T, Errors) {
	return NewSchema[T]().Validate(v)
}

func message(err error) string {
	if ve, ok := err.(ValidationError); ok {
		return ve.Message
	}
	return err.Error()
}

// FieldErrors returns the failing fields and their messages.
func (e *Error) FieldErrors() map[string][]string {
	return e.Fields
}
