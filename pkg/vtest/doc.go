// Package vtest provides testing helpers for components that render vdom
// trees.
//
// # Render Assertions
//
// Assert on rendered HTML output:
//
//	vtest.ExpectContains(t, comp.Render(), "Thank you for subscribing!")
//	vtest.ExpectNotContains(t, comp.Render(), "Email is required")
//
// # Screen Queries
//
// A Screen re-renders a component on every query, so assertions always see
// the latest state. Queries match the innermost elements whose trimmed text
// equals the given string:
//
//	screen := vtest.NewScreen(form)
//	screen.GetByText(t, "First name is required")
//	if screen.QueryByText("Email is invalid") != nil {
//	    t.Error("unexpected email error")
//	}
//
// For components that update asynchronously, FindByText polls until the
// text appears:
//
//	screen.FindByText(t, "Thank you for subscribing!")
package vtest
