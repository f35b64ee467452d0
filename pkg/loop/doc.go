// Package loop provides the single-goroutine event loop a component runs on.
//
// User input and the completion of asynchronous work are both delivered to the
// loop as functions, so component state is only ever touched by one goroutine:
//
//	l := loop.New(loop.WithLogger(logger))
//	defer l.Close()
//
//	// From an input handler: run and wait.
//	l.Do(func() { name.Set(value) })
//
//	// From a background goroutine: queue and return.
//	go func() {
//	    res, err := submit(ctx)
//	    l.Dispatch(func() { apply(res, err) })
//	}()
package loop
