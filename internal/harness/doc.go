// Package harness runs YAML-driven reconciliation scenarios: a fetched set
// of datapoints, an edit expressed either as the literal edited file or as
// a list of table operations, and expectations on the resulting plan, the
// remote calls and the progress after a (possibly failing) apply.
//
// Scenario files live in testdata and are parsed strictly, so a typo in a
// field name fails the scenario instead of silently skipping an assertion.
// Each scenario's plan is also pinned by a golden file.
package harness
