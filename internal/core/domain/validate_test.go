package domain

import (
	"strings"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  A@B.com "); got != "a@b.com" {
		t.Fatalf("expected a@b.com, got %q", got)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.com", "user.name@sub.example.org", "A@B.Co"}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Fatalf("expected %q to pass, got %v", email, err)
		}
	}

	invalid := []string{"", "plain", "no-at.com", "a@b", "a b@c.com", "@b.com"}
	for _, email := range invalid {
		err := ValidateEmail(email)
		if err == nil {
			t.Fatalf("expected %q to fail", email)
		}
		if !IsValidation(err) {
			t.Fatalf("expected ValidationError for %q, got %v", email, err)
		}
	}
}

func TestValidatePassword_WeakRejectedWithReason(t *testing.T) {
	// Six characters: all classes present but below the minimum length.
	err := ValidatePassword("Weak1!")
	if err == nil {
		t.Fatalf("expected weak password to fail")
	}
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "8 characters") {
		t.Fatalf("expected length cited, got %q", err.Error())
	}
}

func TestValidatePassword_StrongAccepted(t *testing.T) {
	if err := ValidatePassword("Strong1!"); err != nil {
		t.Fatalf("expected Strong1! to pass, got %v", err)
	}
}

func TestValidatePassword_MissingClasses(t *testing.T) {
	cases := map[string]string{
		"alllowercase1!": "an uppercase letter",
		"ALLUPPERCASE1!": "a lowercase letter",
		"NoDigitsHere!!": "a digit",
		"NoSymbolsHere1": "a symbol",
	}
	for password, want := range cases {
		err := ValidatePassword(password)
		if err == nil {
			t.Fatalf("expected %q to fail", password)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error for %q, got %q", want, password, err.Error())
		}
	}
}

func TestValidateFullName(t *testing.T) {
	if err := ValidateFullName("Jo"); err != nil {
		t.Fatalf("expected two-character name to pass, got %v", err)
	}
	if err := ValidateFullName("  J  "); err == nil {
		t.Fatalf("expected single-character name to fail after trimming")
	}
}
