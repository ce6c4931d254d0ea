// Package errors turns failures into actionable CLI messages.
//
// Every CLIError carries a code (e.g., "U200") that maps to a category, a
// short message, an explanation and a hint. API domain errors are mapped by
// kind:
//
//   - NetworkError: U200, or U201 when the call timed out
//   - ValidationError: U300, or U301 with per-field messages for bad input
//   - NotFoundError: U400
//
// # Usage
//
//	if err := svc.Create(ctx, form); err != nil {
//	    errors.PrintError(os.Stderr, errors.FromError(err, "U900"))
//	}
//
//	// Output:
//	// ERROR U301: Invalid input
//	//
//	//   email: Invalid email address
//	//
//	//   Hint: Fix the listed fields and try again
package errors
