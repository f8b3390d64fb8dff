// Package backup keeps local snapshots of remote datapoints in SQLite.
//
// Two things land here: explicit account backups, and the safety snapshot
// taken right before a plan is applied. Bulk editing deletes by omission,
// so a stray dd in the editor can wipe a goal; the pre-apply snapshot makes
// that recoverable without any server-side help.
//
// Snapshots are append-only. Nothing in the tool ever restores one
// automatically; restore is a human decision made over an export.
package backup
