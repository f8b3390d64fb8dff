// Package reconcile turns an edited set of rows into a plan of remote
// mutations and executes it.
//
// The diff side is pure: classify each row against its snapshot, collect
// creates, updates and deletes, and never touch the network. The apply side
// walks a finished plan against a RemoteStore in a fixed order (creates,
// then updates, then deletes) and stops at the first failure, reporting how
// far it got. There is no rollback; everything already applied stays applied.
//
// Both edit surfaces share this package. The bulk file flow feeds it
// snapshot-less rows plus the fetched set, the interactive table feeds it
// rows that already carry snapshots and tombstones. Same classification,
// same plan shape, same executor.
package reconcile
