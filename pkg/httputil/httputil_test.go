package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func shortBackoff(t *testing.T) {
	t.Helper()
	prev := BaseDelay
	BaseDelay = time.Millisecond
	t.Cleanup(func() { BaseDelay = prev })
}

func TestRetry(t *testing.T) {
	transient := &RetryableError{Err: errors.New("flaky")}
	permanent := errors.New("bad request")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first time", 0, nil, 1, false},
		{"recovers after transient", 2, transient, 3, false},
		{"gives up after attempts", 5, transient, 3, true},
		{"permanent error stops", 5, permanent, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), 3, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("flaky")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFetch(t *testing.T) {
	shortBackoff(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"nodes":[]}`))
		case "/flaky":
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("recovered"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	got, err := Fetch(ctx, srv.Client(), srv.URL+"/ok")
	if err != nil {
		t.Fatalf("Fetch /ok: %v", err)
	}
	if string(got) != `{"nodes":[]}` {
		t.Errorf("body = %q", got)
	}

	got, err = Fetch(ctx, srv.Client(), srv.URL+"/flaky")
	if err != nil {
		t.Fatalf("Fetch /flaky: %v", err)
	}
	if string(got) != "recovered" || hits.Load() != 3 {
		t.Errorf("body = %q after %d hits", got, hits.Load())
	}

	_, err = Fetch(ctx, srv.Client(), srv.URL+"/missing")
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Status != http.StatusNotFound {
		t.Fatalf("Fetch /missing: err = %v, want 404 StatusError", err)
	}
	if errors.As(err, new(*RetryableError)) {
		t.Error("404 should not be retryable")
	}
}
