// Package tsv serializes editable rows to and from the tab-separated text
// format used by the bulk edit surface.
//
// The format is one header line followed by one line per row, columns
// TIMESTAMP, VALUE, COMMENT, ID separated by single tabs. Timestamps are
// rendered in a caller-supplied location at second resolution; Decode
// re-applies the caller's (current) location rather than anything stored in
// the file. If the location differs between encode and decode - a DST
// boundary, a different machine - round-tripped timestamps shift
// accordingly. That asymmetry is accepted, not masked.
//
// Known format limitation: comments are written verbatim, so a comment
// containing a tab or newline corrupts column alignment.
package tsv
