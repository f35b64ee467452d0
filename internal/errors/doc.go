// Package errors provides coded, actionable error messages for the
// newsletter command line tools.
//
// Each code maps to a category, a short message and a longer explanation.
// Callers add a suggestion or wrap the underlying cause:
//
//	err := errors.New("N101").
//	    Wrap(jsonErr).
//	    WithSuggestion("Check newsletter.json for a trailing comma")
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR N101: Invalid configuration file
//	//
//	//   newsletter.json is not valid JSON.
//	//
//	//   Hint: Check newsletter.json for a trailing comma
//
// # Error Codes
//
//   - N1xx: configuration
//   - N2xx: command line usage
//   - N3xx: submission
package errors
