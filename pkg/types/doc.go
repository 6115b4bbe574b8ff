// Package types defines shared Go types used by both the evaluation engine
// and the serving surface. These are the canonical in-memory representations
// of fleet records and evaluation results, separate from the CSV input layout.
package types
