package subscribe

import "github.com/vango-dev/newsletter/pkg/vdom"

var fieldLabels = map[Field]string{
	FieldFirstName: "First name",
	FieldEmail:     "Email",
}

var fieldInputs = map[Field]struct {
	inputType    string
	autocomplete string
}{
	FieldFirstName: {"text", "given-name"},
	FieldEmail:     {"email", "email"},
}

const (
	submitLabel  = "Subscribe"
	pendingLabel = "Subscribing…"

	footerHeading = "Stay up to date"
	footerBlurb   = "Get new articles on testing interactive components in your inbox."
)

// Render returns the form markup for s: a labeled input and optional error
// line per field, the submit button and the status line.
func Render(s State) *vdom.VNode {
	pending := s.Status.Kind == StatusPending

	label := submitLabel
	if pending {
		label = pendingLabel
	}

	return vdom.Form(
		vdom.Class("subscribe-form"),
		vdom.Data("component", "subscribe"),
		vdom.Method("post"),
		vdom.NoValidate(),
		vdom.AriaBusy(pending),
		renderField(s, FieldFirstName),
		renderField(s, FieldEmail),
		vdom.Button(
			vdom.Type("submit"),
			vdom.Class("subscribe-submit"),
			vdom.DisabledIf(pending),
			vdom.Text(label),
		),
		renderStatus(s.Status),
	)
}

func renderField(s State, field Field) *vdom.VNode {
	name := string(field)
	errID := name + "-error"
	msg := s.Error(field)
	invalid := msg != ""
	input := fieldInputs[field]

	var describedBy vdom.Attr
	if invalid {
		describedBy = vdom.AriaDescribedBy(errID)
	}

	return vdom.Div(
		vdom.Class("field"),
		vdom.Label(vdom.For(name), vdom.Text(fieldLabels[field])),
		vdom.Input(
			vdom.ID(name),
			vdom.Name(name),
			vdom.Type(input.inputType),
			vdom.Autocomplete(input.autocomplete),
			vdom.Value(s.Values.Get(field)),
			vdom.Data("field", name),
			vdom.AriaInvalid(invalid),
			describedBy,
		),
		vdom.If(invalid, vdom.P(
			vdom.ID(errID),
			vdom.Class("field-error"),
			vdom.Role("alert"),
			vdom.Text(msg),
		)),
	)
}

func renderStatus(st Status) *vdom.VNode {
	text := st.Text()
	if text == "" {
		return nil
	}
	class := "status status-success"
	if st.Kind == StatusFailed {
		class = "status status-error"
	}
	return vdom.P(vdom.Class(class), vdom.Role("status"), vdom.AriaLive("polite"), vdom.Text(text))
}

// Footer renders the site footer that hosts the form.
func Footer(s State) *vdom.VNode {
	return vdom.Footer(
		vdom.Class("site-footer"),
		vdom.Section(
			vdom.Class("newsletter"),
			vdom.H2(vdom.Text(footerHeading)),
			vdom.P(vdom.Text(footerBlurb)),
			vdom.Div(vdom.ID("subscribe-root"), Render(s)),
		),
	)
}
