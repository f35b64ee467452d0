// Package render provides server-side rendering of vdom trees to HTML.
//
// It handles text and attribute escaping, void elements and boolean
// attributes, and can wrap a body in a complete document:
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(node)
//
//	err = r.RenderPage(w, render.PageData{
//	    Title: "Newsletter",
//	    Body:  body,
//	})
package render
