// Package record holds the editable row model shared by both editing
// surfaces.
//
// A Row is the local, mutable view of a remote datapoint. Rows that came
// from a fetch carry the server id and a Snapshot of the fetched fields;
// rows created locally have neither. The id and the snapshot are introduced
// together, at fetch time, and never independently - that pairing is what
// change detection and the diff rules rely on.
//
// The package is pure: no I/O, no logging, no clock reads. Callers supply
// timestamps.
package record
