// Package config loads and validates the windfleet YAML configuration and
// watches it for changes.
//
// Validation runs before any value reaches the evaluation session: an
// invalid tunable (missing threshold, non-positive cost rate, malformed
// prediction date) rejects the whole load and the previous configuration
// stays in effect.
package config
