package vtest

import (
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/newsletter/pkg/vdom"
)

// DefaultWaitTimeout bounds WaitFor and FindByText.
const DefaultWaitTimeout = 2 * time.Second

const pollInterval = 5 * time.Millisecond

// Renderer is anything that renders its current state to a tree.
type Renderer interface {
	Render() *vdom.VNode
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func() *vdom.VNode

// Render calls f.
func (f RenderFunc) Render() *vdom.VNode { return f() }

// Screen queries the rendered output of a component the way a user sees it.
type Screen struct {
	r       Renderer
	timeout time.Duration
}

// NewScreen creates a Screen over r.
func NewScreen(r Renderer) *Screen {
	return &Screen{r: r, timeout: DefaultWaitTimeout}
}

// WithTimeout returns a copy of the screen that waits up to d.
func (s *Screen) WithTimeout(d time.Duration) *Screen {
	c := *s
	c.timeout = d
	return &c
}

// Tree renders the component.
func (s *Screen) Tree() *vdom.VNode {
	return s.r.Render()
}

// HTML renders the component to a string.
func (s *Screen) HTML() string {
	return RenderToString(s.r.Render())
}

// QueryAllByText returns every innermost element whose trimmed text equals
// text.
func (s *Screen) QueryAllByText(text string) []*vdom.VNode {
	var out []*vdom.VNode
	collectText(s.r.Render(), strings.TrimSpace(text), &out)
	return out
}

// collectText appends matches under n to out and reports whether any were
// found, so ancestors of a match are skipped.
func collectText(n *vdom.VNode, text string, out *[]*vdom.VNode) bool {
	if n == nil {
		return false
	}
	matched := false
	for _, child := range n.Children {
		if collectText(child, text, out) {
			matched = true
		}
	}
	if matched {
		return true
	}
	if n.Kind == vdom.KindElement && strings.TrimSpace(n.TextContent()) == text {
		*out = append(*out, n)
		return true
	}
	return false
}

// QueryByText returns the element showing text, or nil.
func (s *Screen) QueryByText(text string) *vdom.VNode {
	matches := s.QueryAllByText(text)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// GetByText returns the single element showing text. It fails the test when
// there is no match or more than one.
func (s *Screen) GetByText(t testing.TB, text string) *vdom.VNode {
	t.Helper()
	matches := s.QueryAllByText(text)
	switch len(matches) {
	case 0:
		t.Fatalf("no element with text %q in:\n%s", text, truncate(s.HTML(), 500))
	case 1:
	default:
		t.Fatalf("found %d elements with text %q, want 1", len(matches), text)
	}
	return matches[0]
}

// GetByLabelText returns the control whose label reads text.
func (s *Screen) GetByLabelText(t testing.TB, text string) *vdom.VNode {
	t.Helper()
	tree := s.r.Render()
	label := tree.Find(func(n *vdom.VNode) bool {
		return n.Tag == "label" && strings.TrimSpace(n.TextContent()) == text
	})
	if label == nil {
		t.Fatalf("no label %q in:\n%s", text, truncate(RenderToString(tree), 500))
	}
	id, _ := label.Attr("for")
	control := tree.Find(func(n *vdom.VNode) bool {
		v, ok := n.Attr("id")
		return ok && v == id
	})
	if control == nil {
		t.Fatalf("label %q points at missing control %q", text, id)
	}
	return control
}

// GetByRole returns the first element with the given role. Elements such as
// button match by tag.
func (s *Screen) GetByRole(t testing.TB, role string) *vdom.VNode {
	t.Helper()
	tree := s.r.Render()
	found := tree.Find(func(n *vdom.VNode) bool {
		v, ok := n.Attr("role")
		if ok && v == role {
			return true
		}
		return n.Tag == role
	})
	if found == nil {
		t.Fatalf("no element with role %q in:\n%s", role, truncate(RenderToString(tree), 500))
	}
	return found
}

// WaitFor polls cond until it returns true or the screen's timeout passes.
func (s *Screen) WaitFor(t testing.TB, cond func() bool) {
	t.Helper()
	if !poll(s.timeout, cond) {
		t.Fatalf("condition not met within %v; last render:\n%s", s.timeout, truncate(s.HTML(), 500))
	}
}

// FindByText waits until text appears and returns the element showing it.
func (s *Screen) FindByText(t testing.TB, text string) *vdom.VNode {
	t.Helper()
	var found *vdom.VNode
	if !poll(s.timeout, func() bool {
		found = s.QueryByText(text)
		return found != nil
	}) {
		t.Fatalf("text %q did not appear within %v; last render:\n%s", text, s.timeout, truncate(s.HTML(), 500))
	}
	return found
}

func poll(timeout time.Duration, cond func() bool) bool {
	if cond() {
		return true
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cond() {
				return true
			}
		case <-deadline.C:
			return cond()
		}
	}
}
