package bindjson

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIssues_IsCategory(t *testing.T) {
	err := error(Issues{{Code: CodeRequired, Path: "/name", Offset: -1}})
	if !errors.Is(err, ErrMissingMandatory) {
		t.Fatalf("expected ErrMissingMandatory")
	}
	if errors.Is(err, ErrParse) {
		t.Fatalf("required must not match ErrParse")
	}
	wrapped := fmt.Errorf("decode person: %w", err)
	if !errors.Is(wrapped, ErrMissingMandatory) {
		t.Fatalf("category must survive wrapping")
	}
	iss, ok := AsIssues(wrapped)
	if !ok || !iss.HasCode(CodeRequired) {
		t.Fatalf("AsIssues failed: %v", wrapped)
	}
}

func TestIssues_ErrorSummary(t *testing.T) {
	var iss Issues
	for i := 0; i < 5; i++ {
		iss = AppendIssues(iss, Issue{Code: CodeRequired, Path: fmt.Sprintf("/f%d", i), Offset: -1})
	}
	msg := iss.Error()
	if !strings.Contains(msg, "required at /f0") || !strings.Contains(msg, "total 5") {
		t.Fatalf("unexpected summary: %s", msg)
	}
}

func TestRebase(t *testing.T) {
	inner := Issues{{Code: CodeInvalidType, Path: "/b", Offset: 3}}
	err := Rebase(Rebase(inner, "a/x"), "root")
	iss, _ := AsIssues(err)
	if iss[0].Path != "/root/a~1x/b" {
		t.Fatalf("unexpected path: %s", iss[0].Path)
	}
	if inner[0].Path != "/b" {
		t.Fatalf("rebase must not mutate its input")
	}
	plain := Rebase(errors.New("boom"), "f")
	if !errors.Is(plain, ErrTypeMismatch) {
		t.Fatalf("plain errors become invalid_type: %v", plain)
	}
}
