// Package config loads runtime configuration from a YAML file, environment
// variables and flags, in that order of increasing precedence.
//
// The auth token has its own resolution chain so the secret never has to
// live in the config file: a literal token wins, then a named environment
// variable, then the trimmed output of a shell command (a password manager
// lookup, typically).
package config
