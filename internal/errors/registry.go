package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (U100-U199)
	// ============================================

	"U100": {
		Category:   CategoryConfig,
		Message:    "Cannot read config file",
		Detail:     "The configuration file exists but could not be read or parsed.",
		Suggestion: "Check that userboard.yaml is valid YAML",
	},
	"U101": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration value",
		Suggestion: "Run 'userboard --help' to see accepted flags and values",
	},

	// ============================================
	// Network Errors (U200-U299)
	// ============================================

	"U200": {
		Category:   CategoryNetwork,
		Message:    "Network error",
		Detail:     "The API could not be reached or answered with an unexpected status.",
		Suggestion: "Check --base-url and that the API is running ('userboard serve')",
	},
	"U201": {
		Category:   CategoryNetwork,
		Message:    "Request timed out",
		Detail:     "The API did not answer within the configured timeout.",
		Suggestion: "Raise --timeout or check the API latency",
	},

	// ============================================
	// Validation Errors (U300-U399)
	// ============================================

	"U300": {
		Category: CategoryValidation,
		Message:  "Validation error",
		Detail:   "The request or the response did not match the expected schema.",
	},
	"U301": {
		Category:   CategoryValidation,
		Message:    "Invalid input",
		Suggestion: "Fix the listed fields and try again",
	},

	// ============================================
	// Not Found Errors (U400-U499)
	// ============================================

	"U400": {
		Category: CategoryNotFound,
		Message:  "Not found",
		Detail:   "The requested resource does not exist.",
	},

	// ============================================
	// Server Errors (U500-U599)
	// ============================================

	"U500": {
		Category:   CategoryServer,
		Message:    "Server failed",
		Suggestion: "Check that the listen address is free",
	},

	// ============================================
	// CLI Errors (U900-U999)
	// ============================================

	"U900": {
		Category: CategoryCLI,
		Message:  "Command failed",
	},
}

// Lookup returns the template for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
