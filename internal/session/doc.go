// Package session owns one fleet evaluation run: the asset collection, the
// cost matrix, the tunables, and the Unscored → Scored → Filtered → Routed
// state machine.
//
// The machine is re-entrant: any configuration change (prediction date,
// threshold, cost rate, asset-set mutation) drops the session back to
// Unscored, so stale filter or route results can never be served. Queries
// on a state the session has not reached return an error instead of old
// data.
//
// A Session is single-writer and not safe for concurrent use. The serving
// surface reads immutable FleetSnapshots built by Evaluate instead of
// touching the session directly.
package session
