// Package subscribe implements the newsletter subscription form component.
//
// A Form owns the first-name and email inputs, validates them locally,
// submits them through an injected Submitter and exposes the result as a
// status line. Every event is applied on the form's own event loop, so the
// component behaves like a widget on a UI thread:
//
//	f := subscribe.New(newsletter.NewClient(endpoint))
//	defer f.Close()
//
//	f.OnFieldChange(subscribe.FieldFirstName, "John")
//	f.OnFieldChange(subscribe.FieldEmail, "john@doe.com")
//	if started, _ := f.OnSubmit(); started {
//	    _ = f.Wait(ctx)
//	}
//	fmt.Println(f.State().Status.Text()) // Thank you for subscribing!
//
// # Submission lifecycle
//
// The status moves Idle → Pending on a valid submit, then to Succeeded or
// Failed when the Submitter returns. While Pending the submit control is
// disabled and further OnSubmit calls are no-ops, so at most one submission
// is ever in flight. Editing any field clears that field's validation error
// and dismisses a success or failure message.
//
// A result is applied when it arrives even if fields were edited while it
// was pending; only the status changes, the user's edits are kept.
//
// # Rendering
//
// Render turns a State into markup; Subscribe delivers a fresh State after
// every change so a view can re-render:
//
//	unsubscribe := f.Subscribe(func(s subscribe.State) {
//	    push(subscribe.Render(s))
//	})
package subscribe
