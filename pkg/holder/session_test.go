package holder

import "testing"

func TestNewSessionBuilds(t *testing.T) {
	dir := t.TempDir()
	client, err := NewSession(dir, "Authorization", "token abc123")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if client == nil {
		t.Fatal("expected a non-nil client")
	}
}

func TestNewSessionNoAuth(t *testing.T) {
	dir := t.TempDir()
	client, err := NewSession(dir, "", "")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if client == nil {
		t.Fatal("expected a non-nil client")
	}
}
