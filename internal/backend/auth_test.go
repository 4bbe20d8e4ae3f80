/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package backend

import (
	"testing"
	"time"
)

func TestTokenSignVerifyRoundTrip(t *testing.T) {
	tok, err := signToken("s3cret", "rashid", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}
	sub, err := verifyToken("s3cret", tok)
	if err != nil {
		t.Fatalf("verifyToken: %v", err)
	}
	if sub != "rashid" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tok, err := signToken("s3cret", "rashid", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}
	if _, err := verifyToken("other", tok); err == nil {
		t.Fatalf("expected bad signature error")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	tok, err := signToken("s3cret", "rashid", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}
	if _, err := verifyToken("s3cret", tok); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestTokenRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "abc", "a.b.c", "!!!.@@@"} {
		if _, err := verifyToken("s3cret", tok); err == nil {
			t.Fatalf("expected error for %q", tok)
		}
	}
}
