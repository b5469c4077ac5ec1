package model

import (
	"fmt"
	"testing"
)

func TestNotFoundWrapping(t *testing.T) {
	err := fmt.Errorf("score: %w", UserNotFound(42))
	if !IsNotFound(err) {
		t.Fatalf("expected wrapped not found, got %v", err)
	}
	if err.Error() != "score: user 42 not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	byHandle := &NotFoundError{Kind: "user", Handle: "nytimes"}
	if byHandle.Error() != "user @nytimes not found" {
		t.Fatalf("unexpected message %q", byHandle.Error())
	}
	if IsNotFound(fmt.Errorf("boom")) {
		t.Fatalf("plain error must not match")
	}
}
