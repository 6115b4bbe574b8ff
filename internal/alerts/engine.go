package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/windfleet/windfleet/internal/config"
	"github.com/windfleet/windfleet/pkg/types"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert represents a single alert event produced by the rule engine.
// SubjectID is "fleet" for fleet-wide rules or the asset the rule fired on.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	SubjectID  string     `json:"subject_id"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine evaluates alert rules against evaluation snapshots and delivers
// webhook notifications when rules fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	rules    []config.AlertRule
	webhooks []config.WebhookConfig

	mu       sync.Mutex
	active   map[string]*Alert    // key: "ruleName:subjectID"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
}

// New creates an Engine from the alerts configuration.
// An Engine with empty rules is valid — Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	return &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate tests all configured rules against snap.
// Alerts that fire are stored and webhook delivery is triggered
// asynchronously. Alerts that were firing but whose condition no longer
// matches their subject are resolved.
func (e *Engine) Evaluate(snap *types.FleetSnapshot) {
	if len(e.rules) == 0 {
		return
	}

	now := time.Now()
	for _, rule := range e.rules {
		matches := evalCondition(rule.Condition, snap)

		firing := make(map[string]match, len(matches))
		for _, m := range matches {
			firing[m.subjectID] = m
		}

		for _, m := range matches {
			e.fire(rule, m, now)
		}
		e.resolveStale(rule, firing, now)
	}
}

// fire records one rule match, honoring the cooldown window.
func (e *Engine) fire(rule config.AlertRule, m match, now time.Time) {
	key := rule.Name + ":" + m.subjectID

	e.mu.Lock()
	cooldown := rule.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	if now.Sub(e.lastFire[key]) <= cooldown {
		e.mu.Unlock()
		return
	}

	sev := rule.Severity
	if sev == "" {
		sev = "warning"
	}
	a := &Alert{
		ID:        fmt.Sprintf("%s:%s:%d", rule.Name, m.subjectID, now.UnixNano()),
		RuleName:  rule.Name,
		SubjectID: m.subjectID,
		Severity:  sev,
		Value:     m.value,
		Message: fmt.Sprintf("[%s] %s fired on %s — %s = %.2f",
			sev, rule.Name, m.subjectID, rule.Condition, m.value),
		FiredAt: now,
		State:   "firing",
	}
	e.active[key] = a
	e.lastFire[key] = now
	alertCopy := *a
	e.mu.Unlock()

	slog.Warn("alert fired",
		"rule", rule.Name,
		"subject", m.subjectID,
		"value", m.value,
		"severity", sev,
	)
	go e.deliver(&alertCopy)
}

// resolveStale resolves active alerts for rule whose subject no longer fires.
func (e *Engine) resolveStale(rule config.AlertRule, firing map[string]match, now time.Time) {
	prefix := rule.Name + ":"

	e.mu.Lock()
	var resolved []*Alert
	for key, a := range e.active {
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		if _, still := firing[a.SubjectID]; still {
			continue
		}
		t := now
		a.State = "resolved"
		a.ResolvedAt = &t
		delete(e.active, key)

		e.history = append(e.history, a)
		if len(e.history) > maxHistoryLen {
			e.history = e.history[len(e.history)-maxHistoryLen:]
		}
		cp := *a
		resolved = append(resolved, &cp)
	}
	e.mu.Unlock()

	for _, a := range resolved {
		slog.Info("alert resolved", "rule", a.RuleName, "subject", a.SubjectID)
		go e.deliver(a)
	}
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour. Firing alerts come first; within each
// state the order is oldest-fired first with rule name and subject as
// tie-breaks, so repeated calls return the same sequence.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := time.Now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.State != b.State {
			return a.State == "firing"
		}
		if !a.FiredAt.Equal(b.FiredAt) {
			return a.FiredAt.Before(b.FiredAt)
		}
		if a.RuleName != b.RuleName {
			return a.RuleName < b.RuleName
		}
		return a.SubjectID < b.SubjectID
	})
	return out
}
