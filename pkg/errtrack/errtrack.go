// Package errtrack reports pipeline failures to an error tracker. Every
// report is logged; a Discord-compatible webhook can be added on top.
package errtrack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"calendar-autobot/pkg/log"
)

const (
	defaultTimeout = 5 * time.Second
	maxContentLen  = 1900
)

var ErrWebhookNotConfigured = errors.New("errtrack: webhook url is empty")

// Reporter captures an error with a few searchable fields (user_id, stage, ...).
type Reporter interface {
	Report(ctx context.Context, err error, fields map[string]string)
}

// Config selects the reporter backends.
type Config struct {
	Service    string
	WebhookURL string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// New returns a log-only reporter, or a log + webhook reporter when WebhookURL is set.
func New(l log.Logger, cfg Config) Reporter {
	logReporter := NewLogReporter(l, cfg.Service)
	if cfg.WebhookURL == "" {
		return logReporter
	}
	hook, err := NewWebhook(l, cfg)
	if err != nil {
		return logReporter
	}
	return multi{logReporter, hook}
}

type multi []Reporter

func (m multi) Report(ctx context.Context, err error, fields map[string]string) {
	for _, r := range m {
		r.Report(ctx, err, fields)
	}
}

type logReporter struct {
	l       log.Logger
	service string
}

// NewLogReporter writes each report as a structured error entry.
func NewLogReporter(l log.Logger, service string) Reporter {
	return &logReporter{l: l, service: service}
}

func (r *logReporter) Report(ctx context.Context, err error, fields map[string]string) {
	if err == nil {
		return
	}
	r.l.Errorf(ctx, "errtrack: service=%s %s error=%v", r.service, formatFields(fields), err)
}

type webhook struct {
	l       log.Logger
	url     string
	service string
	hc      *http.Client
}

type webhookPayload struct {
	Content string `json:"content"`
}

// NewWebhook posts reports to a Discord-compatible webhook.
func NewWebhook(l log.Logger, cfg Config) (Reporter, error) {
	if cfg.WebhookURL == "" {
		return nil, ErrWebhookNotConfigured
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &webhook{l: l, url: cfg.WebhookURL, service: cfg.Service, hc: hc}, nil
}

// Report is best effort: delivery failures are logged and dropped.
func (w *webhook) Report(ctx context.Context, err error, fields map[string]string) {
	if err == nil {
		return
	}

	content := fmt.Sprintf("**%s** error\n`%v`", w.service, err)
	if f := formatFields(fields); f != "" {
		content += "\n" + f
	}
	if trace := log.TraceIDFromContext(ctx); trace != "" {
		content += "\ntrace_id=" + trace
	}
	if len(content) > maxContentLen {
		content = content[:maxContentLen]
	}

	body, _ := json.Marshal(webhookPayload{Content: content})
	req, rerr := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, w.url, bytes.NewReader(body))
	if rerr != nil {
		w.l.Warnf(ctx, "errtrack.webhook: build request: %v", rerr)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, derr := w.hc.Do(req)
	if derr != nil {
		w.l.Warnf(ctx, "errtrack.webhook: %v", derr)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		w.l.Warnf(ctx, "errtrack.webhook: status %d", resp.StatusCode)
	}
}

func formatFields(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fields[k])
	}
	return strings.Join(parts, " ")
}

// Nop discards reports.
type Nop struct{}

func (Nop) Report(context.Context, error, map[string]string) {}
