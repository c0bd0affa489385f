package verification

import (
	"testing"
	"time"
)

func TestIssueAndVerifyOnce(t *testing.T) {
	s := NewStore(time.Minute)
	code := s.Issue("user@example.com")
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	if !s.Verify("user@example.com", code) {
		t.Fatalf("expected code to verify")
	}
	// second use must fail
	if s.Verify("user@example.com", code) {
		t.Fatalf("expected code to be single-use")
	}
}

func TestVerify_WrongCode(t *testing.T) {
	s := NewStore(time.Minute)
	code := s.Issue("a@b.c")
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if s.Verify("a@b.c", wrong) {
		t.Fatalf("wrong code accepted")
	}
	// the real code must still work after a failed attempt
	if !s.Verify("a@b.c", code) {
		t.Fatalf("valid code rejected")
	}
}

func TestVerify_UnknownKey(t *testing.T) {
	s := NewStore(time.Minute)
	if s.Verify("nobody", "123456") {
		t.Fatalf("expected false for unknown key")
	}
}

func TestExpiry(t *testing.T) {
	s := NewStore(time.Minute)
	code := s.Issue("a@b.c")
	// rewind the clock instead of sleeping
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if s.Verify("a@b.c", code) {
		t.Fatalf("expected expired code to fail")
	}
}

func TestReissueReplacesCode(t *testing.T) {
	s := NewStore(time.Minute)
	first := s.Issue("a@b.c")
	second := s.Issue("a@b.c")
	if first != second && s.Verify("a@b.c", first) {
		t.Fatalf("stale code accepted after reissue")
	}
	if !s.Verify("a@b.c", second) {
		t.Fatalf("fresh code rejected")
	}
}
