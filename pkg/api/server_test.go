package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestIPGate(t *testing.T) {
	g := newIPGate()

	if !g.acquire("10.0.0.1") {
		t.Fatal("first acquire refused")
	}
	if g.acquire("10.0.0.1") {
		t.Error("second acquire for same IP admitted")
	}
	if !g.acquire("10.0.0.2") {
		t.Error("different IP refused")
	}

	g.release("10.0.0.1")
	if !g.acquire("10.0.0.1") {
		t.Error("acquire after release refused")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.7:51234"
	if ip := clientIP(r); ip != "192.0.2.7" {
		t.Errorf("clientIP = %q, want 192.0.2.7", ip)
	}

	r.RemoteAddr = "192.0.2.7"
	if ip := clientIP(r); ip != "192.0.2.7" {
		t.Errorf("clientIP without port = %q, want 192.0.2.7", ip)
	}
}

func TestMiddlewareLimitsConcurrency(t *testing.T) {
	cfg := DefaultConfig(":0")
	sem := make(chan struct{}, 1)

	started := make(chan struct{})
	done := make(chan struct{})
	blocking := withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-done
	}, sem, nil, cfg, zap.NewNop())

	go func() {
		w := httptest.NewRecorder()
		blocking(w, httptest.NewRequest("POST", "/api/v1/route", nil))
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first request never started")
	}

	w := httptest.NewRecorder()
	blocking(w, httptest.NewRequest("POST", "/api/v1/route", nil))
	close(done)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestMiddlewareSingleFlightPerIP(t *testing.T) {
	cfg := DefaultConfig(":0")
	gate := newIPGate()

	started := make(chan struct{})
	done := make(chan struct{})
	blocking := withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-done
	}, nil, gate, cfg, zap.NewNop())

	first := httptest.NewRequest("POST", "/api/v1/route", nil)
	first.RemoteAddr = "192.0.2.7:1111"
	go func() {
		blocking(httptest.NewRecorder(), first)
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first request never started")
	}

	second := httptest.NewRequest("POST", "/api/v1/route", nil)
	second.RemoteAddr = "192.0.2.7:2222"
	w := httptest.NewRecorder()
	blocking(w, second)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("same-IP status = %d, want 429", w.Code)
	}

	// A different client goes through.
	other := httptest.NewRequest("POST", "/api/v1/route", nil)
	other.RemoteAddr = "192.0.2.8:3333"
	w = httptest.NewRecorder()
	ok := withMiddleware(func(w http.ResponseWriter, r *http.Request) {}, nil, gate, cfg, zap.NewNop())
	ok(w, other)
	close(done)

	if w.Code != http.StatusOK {
		t.Errorf("other-IP status = %d, want 200", w.Code)
	}
}

func TestMiddlewareRecovery(t *testing.T) {
	cfg := DefaultConfig(":0")
	panicking := withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, nil, nil, cfg, zap.NewNop())

	w := httptest.NewRecorder()
	panicking(w, httptest.NewRequest("GET", "/api/v1/health", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
