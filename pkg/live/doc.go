// Package live serves the subscription form over HTTP.
//
// GET / renders the page with the form in its footer. A small inline script
// opens a WebSocket to /ws, where each connection mounts its own
// subscribe.Form. The browser sends input and submit events as JSON:
//
//	{"type":"input","field":"email","value":"john@doe.com"}
//	{"type":"submit"}
//
// and the server answers every state change with the re-rendered form:
//
//	{"type":"render","status":"succeeded","html":"<form ...>"}
//
// Without JavaScript the form posts to / and the result is rendered in the
// returned page.
//
// The router also serves /healthz and, when configured, /metrics.
package live
