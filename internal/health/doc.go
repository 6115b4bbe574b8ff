// Package health estimates a component's remaining life and failure risk.
//
// Evaluate is a pure function of (rated lifetime, install date, evaluation
// date): the same inputs always produce the same outputs, which the route
// optimizer relies on for reproducibility.
//
// The failure curve is deliberately quadratic — 1 - health², not linear —
// so near-new components carry almost no risk and risk accelerates sharply
// as health approaches zero. Downstream repair and priority costs are
// calibrated against this exact relationship.
package health
