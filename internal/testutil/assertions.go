package testutil

import (
	"errors"
	"testing"

	"github.com/bawdo/gosbeecte/nodes"
)

// AssertEqual fails the test unless got == want.
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("got:\n  %v\nwant:\n  %v", got, want)
	}
}

// AssertSQL renders node with v and compares the text.
func AssertSQL(t *testing.T, v nodes.Visitor, node nodes.Node, want string) {
	t.Helper()
	AssertEqual(t, node.Accept(v), want)
}

// AssertNoError stops the test on a non-nil err.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError stops the test when err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

// AssertErrorIs stops the test unless err wraps target.
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}
