// Package alerts evaluates rule conditions against fleet snapshots and
// delivers notifications through configured webhooks. Rules fire per
// fleet or per asset depending on the condition field, honor cooldowns,
// and resolve automatically when the condition clears.
package alerts
