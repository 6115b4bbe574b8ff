// Package store holds completed evaluation snapshots for the serving
// surface. It keeps the latest run plus a bounded history of earlier runs,
// so API and WebSocket readers always see a fully-consistent result while
// the session recomputes the next one.
package store
