package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const managerCSV = "ManagerName,Employee\nMgr1,A\nMgr1,B\n"

// flaky serves managerCSV after failing the first n requests with status.
func flaky(t *testing.T, n int32, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= n {
			w.WriteHeader(status)
			return
		}
		_, _ = io.WriteString(w, managerCSV)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// testClient records backoff waits instead of sleeping.
func testClient(cfg Config) (*Client, *[]time.Duration) {
	c := NewClient(cfg)
	var waits []time.Duration
	c.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return c, &waits
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}

func TestRemote_OpenSendsCSVAccept(t *testing.T) {
	t.Parallel()

	var accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		_, _ = io.WriteString(w, managerCSV)
	}))
	defer srv.Close()

	c, waits := testClient(Config{MaxRetries: 3})
	rc, err := NewRemote(c, srv.URL+"/manager.csv").Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := readAll(t, rc); got != managerCSV {
		t.Fatalf("body = %q, want %q", got, managerCSV)
	}
	if !strings.HasPrefix(accept, "text/csv") {
		t.Fatalf("Accept = %q, want text/csv first", accept)
	}
	if len(*waits) != 0 {
		t.Fatalf("waits = %v, want none", *waits)
	}
}

func TestRemote_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv, hits := flaky(t, 2, status)
			c, waits := testClient(Config{MaxRetries: 3, InitialBackoff: 10 * time.Millisecond, MaxBackoff: time.Second})

			rc, err := NewRemote(c, srv.URL).Open(context.Background())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if got := readAll(t, rc); got != managerCSV {
				t.Fatalf("body = %q", got)
			}
			if got := hits.Load(); got != 3 {
				t.Fatalf("requests = %d, want 3", got)
			}
			want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
			if len(*waits) != len(want) || (*waits)[0] != want[0] || (*waits)[1] != want[1] {
				t.Fatalf("waits = %v, want %v", *waits, want)
			}
		})
	}
}

func TestRemote_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	srv, hits := flaky(t, 100, http.StatusServiceUnavailable)
	c, _ := testClient(Config{MaxRetries: 2})

	rc, err := NewRemote(c, srv.URL+"/employee_salary.csv").Open(context.Background())
	if err == nil {
		rc.Close()
		t.Fatalf("Open succeeded, want error")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "employee_salary.csv") {
		t.Fatalf("err = %v, want the status and the source URL", err)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("requests = %d, want 3", got)
	}
}

func TestRemote_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	srv, hits := flaky(t, 100, http.StatusNotFound)
	c, waits := testClient(Config{MaxRetries: 5})

	_, err := NewRemote(c, srv.URL+"/employee.csv").Open(context.Background())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("err = %v, want a 404 error", err)
	}
	if hits.Load() != 1 || len(*waits) != 0 {
		t.Fatalf("requests = %d waits = %v, want one request and no waits", hits.Load(), *waits)
	}
}

func TestRemote_CanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	srv, hits := flaky(t, 100, http.StatusInternalServerError)
	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(Config{MaxRetries: 5})
	c.wait = func(ctx context.Context, d time.Duration) error {
		cancel()
		return waitContext(ctx, d)
	}

	_, err := NewRemote(c, srv.URL).Open(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("requests = %d, want 1", got)
	}
}

// http.insecure_skip_verify lets a run read sources from a self-signed host.
func TestNewClient_InsecureSkipVerify(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, managerCSV)
	}))
	defer srv.Close()

	strict, _ := testClient(Config{Timeout: 2 * time.Second})
	if _, err := NewRemote(strict, srv.URL).Open(context.Background()); err == nil {
		t.Fatalf("expected a certificate error without insecure_skip_verify")
	}

	lax, _ := testClient(Config{Timeout: 2 * time.Second, InsecureSkipVerify: true})
	rc, err := NewRemote(lax, srv.URL).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := readAll(t, rc); got != managerCSV {
		t.Fatalf("body = %q", got)
	}
}

func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{4, 3200 * time.Millisecond},
		{5, 5 * time.Second},
		{70, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := backoffDuration(200*time.Millisecond, tt.attempt, 5*time.Second); got != tt.want {
			t.Fatalf("attempt %d: backoff = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestWaitContext(t *testing.T) {
	t.Parallel()

	if err := waitContext(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("waitContext: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := waitContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
