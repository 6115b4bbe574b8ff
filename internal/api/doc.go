// Package api implements the HTTP JSON API for fleetd.
//
// All endpoints read completed evaluation snapshots from the run store;
// nothing here touches a live session. Routes:
//
//	GET /api/v1/summary      — fleet totals for the latest run
//	GET /api/v1/assets       — all asset snapshots from the latest run
//	GET /api/v1/assets/{id}  — one asset snapshot
//	GET /api/v1/route        — optimized visiting order for the latest run
//	GET /api/v1/runs         — retained run history, newest first
//	GET /api/v1/runs/{id}    — one full run snapshot
//	GET /api/v1/alerts       — firing and recently resolved alerts
//	GET /metrics             — Prometheus text exposition of fleet gauges
//
// Responses are JSON except /metrics. Optional API-key auth is applied by
// Middleware; /metrics stays open for scrapers.
package api
