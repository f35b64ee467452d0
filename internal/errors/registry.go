package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Configuration (N100-N199)

	"N100": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No newsletter.json was found at the given path.",
	},
	"N101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "newsletter.json is not valid JSON.",
	},
	"N102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or malformed.",
	},
	"N103": {
		Category: CategoryConfig,
		Message:  "Cannot write configuration file",
		Detail:   "The configuration could not be saved.",
	},
	"N104": {
		Category: CategoryConfig,
		Message:  "Configuration file already exists",
		Detail:   "A newsletter.json is already present in the target directory.",
	},

	// Command line (N200-N299)

	"N200": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		Detail:   "A command line flag has a value the command cannot use.",
	},
	"N201": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},

	// Submission (N300-N399)

	"N300": {
		Category: CategoryValidation,
		Message:  "Form has invalid fields",
		Detail:   "Fix the fields listed above and try again.",
	},
	"N301": {
		Category: CategorySubmission,
		Message:  "Subscription failed",
		Detail:   "The newsletter endpoint did not accept the subscription.",
	},
	"N302": {
		Category: CategorySubmission,
		Message:  "Subscription timed out",
		Detail:   "No answer arrived before the configured timeout.",
	},
}
