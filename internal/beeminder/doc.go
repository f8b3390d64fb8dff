// Package beeminder is a thin client for the Beeminder API v1.
//
// The client covers the datapoint lifecycle (list, create, update, delete,
// batch create) plus the goal reads the CLI needs. All calls take a
// context.Context and are issued sequentially by callers; the client itself
// holds no mutable state beyond the underlying http.Client.
//
// Authentication is a per-request auth_token query parameter. Writes use
// form-encoded bodies, matching what the API expects.
package beeminder
