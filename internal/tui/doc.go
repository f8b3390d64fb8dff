// Package tui is the interactive per-cell editor: a goal list screen and a
// datapoint table screen driven by tcell.
//
// Domain state lives in Session, which knows nothing about terminals,
// cursors or scroll offsets. The App layer owns the screen, translates key
// events into Session calls, and renders whatever Session holds. Deletion
// here is explicit: rows are tombstoned with a marker and removed only when
// the plan is saved.
package tui
