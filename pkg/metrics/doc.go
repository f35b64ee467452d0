// Package metrics records newsletter form activity as Prometheus metrics.
//
// A Recorder implements subscribe.Recorder and is passed to every form:
//
//	rec := metrics.New(metrics.WithRegistry(reg))
//	f := subscribe.New(client, subscribe.WithRecorder(rec))
//
// Handler exposes a registry for scraping.
package metrics
