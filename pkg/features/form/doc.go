// Package form validates plain Go structs before they are sent anywhere.
//
// A Schema is built from struct tags:
//
//	type UserForm struct {
//	    Name     string `form:"name" validate:"required,max=50"`
//	    Email    string `form:"email" validate:"required,email"`
//	    Language string `form:"language" validate:"required,oneof=auto en nl fr"`
//	}
//
//	schema := form.NewSchema[UserForm]().
//	    Rule("name", form.Required("Name is required"), form.MaxLength(50, ""))
//
//	clean, errs := schema.Validate(input)
//	if err := errs.Err(); err != nil {
//	    return err
//	}
//
// Validation first normalizes the value by trimming string fields. Each
// field stops at its first failing validator; every failing field is
// reported, so a form can show all problems at once.
//
// # Validators
//
//   - Required: Non-empty value
//   - MinLength/MaxLength: String length constraints
//   - Email: Valid email format
//   - Pattern: Regular expression matching
//   - OneOf: Fixed set of allowed values
//   - Custom: User-defined validation logic
package form
