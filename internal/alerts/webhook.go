package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// deliver sends webhook notifications for a to all configured targets.
// Errors are logged but do not affect the caller.
func (e *Engine) deliver(a *Alert) {
	for _, wh := range e.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = e.sendSlack(url, a)
		case "teams":
			err = e.sendTeams(url, a)
		case "http":
			err = e.sendHTTP(url, a)
		default:
			slog.Warn("alerts: unknown webhook type — skipping", "type", wh.Type)
			continue
		}

		if err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type,
				"rule", a.RuleName,
				"err", err,
			)
		} else {
			slog.Debug("alerts: webhook delivered",
				"type", wh.Type,
				"rule", a.RuleName,
				"state", a.State,
			)
		}
	}
}

// subjectLabel names what the alert fired on for humans: the whole fleet
// or one asset.
func subjectLabel(a *Alert) string {
	if a.SubjectID == "fleet" {
		return "fleet"
	}
	return "asset " + a.SubjectID
}

func (e *Engine) sendSlack(url string, a *Alert) error {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* %s on %s", severityLabel(a.Severity), a.RuleName, subjectLabel(a))
	if a.State == "resolved" {
		b.WriteString(" — resolved")
	} else {
		fmt.Fprintf(&b, " — value %.2f", a.Value)
	}
	body, _ := json.Marshal(map[string]string{"text": b.String()})
	return e.post(url, body)
}

func (e *Engine) sendTeams(url string, a *Alert) error {
	facts := []map[string]string{
		{"name": "Subject", "value": subjectLabel(a)},
		{"name": "Value", "value": fmt.Sprintf("%.2f", a.Value)},
		{"name": "Severity", "value": a.Severity},
		{"name": "State", "value": a.State},
	}
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": severityColor(a.Severity),
		"summary":    a.RuleName,
		"title":      fmt.Sprintf("Windfleet Alert: %s", a.RuleName),
		"text":       a.Message,
		"sections":   []map[string]interface{}{{"facts": facts}},
	}
	body, _ := json.Marshal(payload)
	return e.post(url, body)
}

func (e *Engine) sendHTTP(url string, a *Alert) error {
	body, _ := json.Marshal(map[string]interface{}{"alert": a})
	return e.post(url, body)
}

func (e *Engine) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func severityLabel(s string) string {
	switch s {
	case "critical":
		return "[CRITICAL]"
	case "warning":
		return "[WARNING]"
	default:
		return "[INFO]"
	}
}

func severityColor(s string) string {
	switch s {
	case "critical":
		return "FF4F6A"
	case "warning":
		return "FFAB40"
	default:
		return "00D4FF"
	}
}
