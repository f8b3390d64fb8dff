// Package bulk implements the external-editor edit flow: fetch a goal's
// datapoints, render them to a tab-separated temp file, hand the file to
// the user's editor, then reconcile what came back against what was sent.
//
// In this flow deletion is by omission: removing a line deletes the
// datapoint. A snapshot of the fetched set is written to the local backup
// store before any mutation is sent, so an over-eager edit stays
// recoverable. A malformed file aborts the whole run before the first
// remote call.
package bulk
