package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"maria@example.com",
		"kenji.tanaka+lessons@school.co.jp",
		"a_b-c@sub.domain.io",
	}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = false, want true", email)
		}
	}

	invalid := []string{
		"",
		"no-at-sign",
		"@example.com",
		"user@",
		"user@nodot",
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = true, want false", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ok, _ := ValidatePassword("longenough1"); !ok {
		t.Error("valid password rejected")
	}
	if ok, errs := ValidatePassword("short"); ok || len(errs) == 0 {
		t.Error("short password accepted")
	}
	if ok, _ := ValidatePassword("12345678"); ok {
		t.Error("digits-only password accepted")
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{"a1", "A2", " b1 ", "B2", "c1", "C2"} {
		if !ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = false, want true", level)
		}
	}
	for _, level := range []string{"", "a3", "d1", "beginner", "b"} {
		if ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = true, want false", level)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Maria@Example.COM "); got != "maria@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeString = %q", got)
	}
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required,min=2"`
	}

	v := NewValidator()
	if err := v.ValidateStruct(payload{Email: "maria@example.com", Name: "María"}); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}

	err := v.ValidateStruct(payload{Email: "bad", Name: "x"})
	if err == nil {
		t.Fatal("invalid struct accepted")
	}
	formatted := FormatValidationErrors(err)
	if len(formatted) != 2 {
		t.Errorf("expected 2 field errors, got %v", formatted)
	}
}
