package logger

import "testing"

func TestSanitizeRedactsSecretKeys(t *testing.T) {
	l := &Logger{redact: true}
	got := l.sanitize([]interface{}{
		"api_key", "AIzaSyExample",
		"model", "gemini-1.5-flash",
		"access_token", "abc",
		"dangling",
	})
	want := []interface{}{
		"api_key", "[REDACTED]",
		"model", "gemini-1.5-flash",
		"access_token", "[REDACTED]",
		"dangling",
	}
	if len(got) != len(want) {
		t.Fatalf("len: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got=%v want=%v", i, got[i], want[i])
		}
	}
}

func TestSanitizeRedactsJWTValues(t *testing.T) {
	l := &Logger{redact: true}
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.signature"
	got := l.sanitize([]interface{}{"detail", jwt})
	if got[1] != "[REDACTED]" {
		t.Fatalf("expected jwt value to be redacted, got %v", got[1])
	}
}

func TestSanitizeDisabled(t *testing.T) {
	l := &Logger{redact: false}
	got := l.sanitize([]interface{}{"password", "hunter2"})
	if got[1] != "hunter2" {
		t.Fatalf("expected passthrough, got %v", got[1])
	}
}
