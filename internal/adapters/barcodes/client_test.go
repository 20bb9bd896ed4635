package barcodes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(srv *httptest.Server) *Client {
	client := New(srv.URL, srv.Client())
	client.backoff = time.Millisecond
	return client
}

func TestIssueBarcodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/barcodes/LILY/new" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("count") != "2" {
			t.Errorf("count = %s", r.URL.Query().Get("count"))
		}
		_ = json.NewEncoder(w).Encode(map[string][]string{"barcodes": {"LILY-1", "LILY-2"}})
	}))
	defer srv.Close()

	got, err := newTestClient(srv).IssueBarcodes(context.Background(), "LILY", 2)
	if err != nil {
		t.Fatalf("IssueBarcodes returned %v", err)
	}
	if len(got) != 2 || got[0] != "LILY-1" {
		t.Fatalf("barcodes = %v", got)
	}
}

func TestIssueBarcodesRejectsNonPositiveCount(t *testing.T) {
	client := New("http://localhost:0", nil)
	if _, err := client.IssueBarcodes(context.Background(), "LILY", 0); err == nil {
		t.Fatal("count 0 should fail before any request")
	}
}

func TestIssueBarcodesRetriesConnectionFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			// Drop the connection so the client sees a transport error.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("response writer does not support hijacking")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack: %v", err)
			}
			_ = conn.Close()
			return
		}
		_ = json.NewEncoder(w).Encode(map[string][]string{"barcodes": {"LILY-1"}})
	}))
	defer srv.Close()

	got, err := newTestClient(srv).IssueBarcodes(context.Background(), "LILY", 1)
	if err != nil {
		t.Fatalf("IssueBarcodes returned %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("barcodes = %v", got)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("server saw %d calls, want 3", calls)
	}
}

func TestIssueBarcodesDoesNotRetryRejections(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unknown centre", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).IssueBarcodes(context.Background(), "NOPE", 1)
	if err == nil || !strings.Contains(err.Error(), "returned 422") {
		t.Fatalf("error = %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("server saw %d calls, want 1", calls)
	}
}

func TestIssueBarcodesCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]string{"barcodes": {"LILY-1"}})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).IssueBarcodes(context.Background(), "LILY", 3)
	if err == nil || !strings.Contains(err.Error(), "issued 1 barcodes, requested 3") {
		t.Fatalf("error = %v", err)
	}
}

func TestIssueBarcodesHonoursContextDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj := w.(http.Hijacker)
		conn, _, _ := hj.Hijack()
		_ = conn.Close()
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	client.backoff = time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.IssueBarcodes(ctx, "LILY", 1)
	if err == nil || !strings.Contains(err.Error(), context.DeadlineExceeded.Error()) {
		t.Fatalf("error = %v", err)
	}
}
