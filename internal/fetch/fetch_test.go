package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(zerolog.Nop(), RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Factor:      2,
		MaxDelay:    5 * time.Millisecond,
	})
}

func destIn(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "model", "weights.bin")
}

func assertNoLeftovers(t *testing.T, destPath string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(destPath))
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatalf("read dest dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFetchSuccess(t *testing.T) {
	content := []byte("the quick brown weights")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	dest := destIn(t)
	n, err := testClient(t).Fetch(context.Background(), srv.URL, dest, int64(len(content)))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if n != int64(len(content)) {
		t.Fatalf("expected %d bytes fetched, got %d", len(content), n)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: %q", string(got))
	}
	assertNoLeftovers(t, dest)
}

func TestFetch404IsPermanentNoRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := destIn(t)
	_, err := testClient(t).Fetch(context.Background(), srv.URL, dest, 10)
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if IsTransient(err) {
		t.Fatal("404 must not classify as transient")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly 1 request, got %d", got)
	}
	if _, serr := os.Stat(dest); !os.IsNotExist(serr) {
		t.Fatal("dest must not exist after permanent failure")
	}
	assertNoLeftovers(t, dest)
}

func TestFetchRetriesTransientThenSucceeds(t *testing.T) {
	content := []byte("eventually available")
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(content)
	}))
	defer srv.Close()

	dest := destIn(t)
	n, err := testClient(t).Fetch(context.Background(), srv.URL, dest, int64(len(content)))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if n != int64(len(content)) {
		t.Fatalf("expected %d bytes, got %d", len(content), n)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 requests, got %d", got)
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dest := destIn(t)
	_, err := testClient(t).Fetch(context.Background(), srv.URL, dest, 10)
	if !IsTransient(err) {
		t.Fatalf("expected transient error after exhausting retries, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected MaxAttempts=3 requests, got %d", got)
	}
}

func TestFetchResumesWithRange(t *testing.T) {
	content := []byte("0123456789abcdefghijklmnopqrstuvwxyz")
	half := len(content) / 2
	var calls int32
	var sawRange atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			// declare the full length but deliver only half, so the
			// client sees an interrupted transfer
			w.Header().Set("Content-Length", fmt.Sprint(len(content)))
			w.Write(content[:half])
		default:
			rng := r.Header.Get("Range")
			sawRange.Store(rng)
			if rng != fmt.Sprintf("bytes=%d-", half) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", half, len(content)-1, len(content)))
			w.WriteHeader(http.StatusPartialContent)
			w.Write(content[half:])
		}
	}))
	defer srv.Close()

	dest := destIn(t)
	n, err := testClient(t).Fetch(context.Background(), srv.URL, dest, int64(len(content)))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// only the missing suffix travels on the second attempt
	if n != int64(len(content)) {
		t.Fatalf("expected %d total network bytes, got %d", len(content), n)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("resumed content differs from source: %q", string(got))
	}
	if v, _ := sawRange.Load().(string); v == "" {
		t.Fatal("expected a Range request on resume")
	}
}

func TestFetchRestartsWhenRangeIgnored(t *testing.T) {
	content := []byte("0123456789abcdefghij")
	half := len(content) / 2
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Content-Length", fmt.Sprint(len(content)))
			w.Write(content[:half])
			return
		}
		// ignore the Range header entirely and serve the full body
		w.Write(content)
	}))
	defer srv.Close()

	dest := destIn(t)
	if _, err := testClient(t).Fetch(context.Background(), srv.URL, dest, int64(len(content))); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	got, _ := os.ReadFile(dest)
	if string(got) != string(content) {
		t.Fatalf("expected full restart to produce exact content, got %q", string(got))
	}
}

func TestFetchEnforcesSizeCeiling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	dest := destIn(t)
	_, err := testClient(t).Fetch(context.Background(), srv.URL, dest, 100)
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error for oversized source, got %v", err)
	}
	if _, serr := os.Stat(dest); !os.IsNotExist(serr) {
		t.Fatal("dest must not exist after ceiling abort")
	}
	if _, serr := os.Stat(dest + ".partial"); !os.IsNotExist(serr) {
		t.Fatal("no partial may survive a ceiling abort")
	}
	assertNoLeftovers(t, dest)
}

func TestFetchTLSValidationFailureIsPermanent(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("never reached"))
	}))
	defer srv.Close()

	dest := destIn(t)
	// default client does not trust the httptest CA
	_, err := testClient(t).Fetch(context.Background(), srv.URL, dest, 10)
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error for TLS validation failure, got %v", err)
	}
}

func TestFetchHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewClient(zerolog.Nop(), RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second})
	dest := destIn(t)
	_, err := c.Fetch(ctx, srv.URL, dest, 10)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}
	if _, serr := os.Stat(dest); !os.IsNotExist(serr) {
		t.Fatal("dest must not exist after cancellation")
	}
}

func TestRetryPolicyDelayCapped(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second, Factor: 2, MaxDelay: 10 * time.Second, MaxAttempts: 8}.withDefaults()
	if d := p.delay(2); d != time.Second {
		t.Fatalf("first backoff: expected 1s, got %v", d)
	}
	if d := p.delay(3); d != 2*time.Second {
		t.Fatalf("second backoff: expected 2s, got %v", d)
	}
	if d := p.delay(8); d != 10*time.Second {
		t.Fatalf("late backoff must cap at 10s, got %v", d)
	}
}
