package util

import "testing"

func TestHashUserKeyIsStableHexNamespace(t *testing.T) {
	got := HashUserKey("google:12345")
	if got != HashUserKey("google:12345") {
		t.Fatalf("expected stable hash, got %s", got)
	}
	if got == HashUserKey("google:123456") {
		t.Fatalf("distinct users must not share a namespace")
	}
	if len(got) != 32 {
		t.Fatalf("expected 32 hex characters, got %d", len(got))
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
}
