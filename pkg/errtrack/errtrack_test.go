package errtrack_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"calendar-autobot/pkg/errtrack"
	"calendar-autobot/pkg/log"
)

type recordingLogger struct {
	log.Logger
	mu     sync.Mutex
	errors []string
}

func (r *recordingLogger) Errorf(ctx context.Context, template string, arg ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, template)
}

func TestNewWithoutWebhookLogsOnly(t *testing.T) {
	l := &recordingLogger{Logger: log.NewNop()}
	r := errtrack.New(l, errtrack.Config{Service: "calendar-autobot"})

	r.Report(context.Background(), errors.New("boom"), map[string]string{"stage": "persist"})
	r.Report(context.Background(), nil, nil)

	if len(l.errors) != 1 {
		t.Errorf("expected 1 logged report, got %d", len(l.errors))
	}
}

func TestWebhookPostsReport(t *testing.T) {
	var got struct {
		Content string `json:"content"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	r := errtrack.New(log.NewNop(), errtrack.Config{Service: "calendar-autobot", WebhookURL: srv.URL})
	ctx := log.WithTraceID(context.Background(), "trace-1")
	r.Report(ctx, errors.New("sync failed"), map[string]string{"user_id": "u1", "stage": "sync"})

	for _, want := range []string{"calendar-autobot", "sync failed", "stage=sync user_id=u1", "trace_id=trace-1"} {
		if !strings.Contains(got.Content, want) {
			t.Errorf("expected content to contain %q, got %q", want, got.Content)
		}
	}
}

func TestNewWebhookRequiresURL(t *testing.T) {
	if _, err := errtrack.NewWebhook(log.NewNop(), errtrack.Config{}); !errors.Is(err, errtrack.ErrWebhookNotConfigured) {
		t.Errorf("expected ErrWebhookNotConfigured, got %v", err)
	}
}

func TestWebhookFailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r, err := errtrack.NewWebhook(log.NewNop(), errtrack.Config{WebhookURL: srv.URL})
	if err != nil {
		t.Fatalf("NewWebhook: %v", err)
	}
	r.Report(context.Background(), errors.New("boom"), nil)
}
