// Package newsletter is the HTTP client for the newsletter sign-up endpoint.
//
// Client implements subscribe.Submitter. It posts
//
//	{"firstName": "John", "email": "john@doe.com"}
//
// as JSON and treats any 2xx response as accepted, reading an optional
// confirmation from the "message" field. Any other status becomes an
// *APIError whose message, taken from the "error" or "message" field, is
// what the form shows.
//
// Every call runs in an OpenTelemetry client span named
// "newsletter.subscribe" on the global tracer provider unless
// WithTracerProvider says otherwise.
package newsletter
