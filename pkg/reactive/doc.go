// Package reactive provides the small signal graph that drives re-rendering
// of form components.
//
// A Signal holds a value and notifies its Listeners when the value changes.
// Signals created under an Owner can be grouped with Owner.Batch so that a
// listener is notified once per batch instead of once per write:
//
//	owner := reactive.NewOwner()
//	name := reactive.NewSignal(owner, "")
//	email := reactive.NewSignal(owner, "")
//
//	name.Subscribe(reactive.ListenerFunc(rerender))
//	email.Subscribe(reactive.ListenerFunc(rerender))
//
//	owner.Batch(func() {
//	    name.Set("John")
//	    email.Set("john@doe.com")
//	})
//	// rerender runs once
//
// Signals are safe for concurrent reads and writes, but an Owner's batches are
// meant to be opened from a single goroutine, normally the component's event
// loop.
package reactive
