package theme

import (
	"strings"
	"testing"
)

func TestFormatting(t *testing.T) {
	if !strings.Contains(Handle("alice"), "@alice") {
		t.Fatal("handle lost its name")
	}
	if !strings.HasSuffix(Heading("x"), reset) {
		t.Fatal("heading does not reset color")
	}
	if Banner() == "" {
		t.Fatal("empty banner")
	}
}

func TestHandleWidthPadsVisibleText(t *testing.T) {
	got := HandleWidth("bob", 8)
	if got != cyan+"@bob    "+reset {
		t.Fatalf("unexpected padding %q", got)
	}
	plain := strings.TrimSuffix(strings.TrimPrefix(HandleWidth("alice", 8), cyan), reset)
	if len(plain) != 8 {
		t.Fatalf("visible width %d, want 8", len(plain))
	}
}
