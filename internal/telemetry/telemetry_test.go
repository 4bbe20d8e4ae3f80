/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestDisabledByDefault(t *testing.T) {
	c := New(Config{})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("telemetry must be opt-in")
	}
	// Must be a no-op, not a panic or block.
	c.Event("app_start", nil)
}

func TestOptInWithoutURLStaysDisabled(t *testing.T) {
	c := New(Config{OptIn: true})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("enabled without an endpoint")
	}
}

func TestEventDelivery(t *testing.T) {
	var mu sync.Mutex
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		_ = json.NewDecoder(r.Body).Decode(&m)
		mu.Lock()
		got = m
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.Event("manuscript_parsed", map[string]any{"paras": 3})
	c.Flush(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		m := got
		mu.Unlock()
		if m != nil {
			if m["name"] != "manuscript_parsed" || m["app"] != "hibr" {
				t.Fatalf("unexpected payload: %+v", m)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("event never delivered")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HBW_TELEMETRY_OPT_IN", "yes")
	t.Setenv("HBW_TELEMETRY_URL", "https://example.test/t")
	t.Setenv("HBW_TELEMETRY_TIMEOUT_MS", "250")
	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "https://example.test/t" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
}
