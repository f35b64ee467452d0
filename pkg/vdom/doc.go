// Package vdom provides the virtual node tree components render into.
//
// Elements are built with variadic helpers that accept attributes, child
// nodes and plain strings:
//
//	Form(Class("subscribe"), Data("action", "submit"),
//	    Label(For("firstName"), Text("First name")),
//	    Input(ID("firstName"), Type("text"), Value(first)),
//	    Button(Type("submit"), DisabledIf(pending), Text("Subscribe")),
//	)
//
// nil arguments are ignored, which keeps conditional markup terse:
//
//	If(err != "", P(Class("error"), Text(err)))
package vdom
