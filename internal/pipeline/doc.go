// Package pipeline owns the scan-then-enrich run and the
// latest-request-wins policy.
//
// A Controller runs at most one observed run at a time. Starting a run
// cancels the previous one through its context; the superseded caller gets
// ErrCancelled and its status updates are suppressed from that moment on.
// The new run may scan while the old one unwinds, but does not open any
// Cache Store until the old run has closed all of its stores.
//
// Phases per run:
//
//	Idle -> Scanning -> Enriching -> Idle
//
// A scan failure rejects the run. Enrichment runs per root in parallel; a
// root whose Cache Store fails is logged and left out, and the run only
// rejects when every root failed.
package pipeline
