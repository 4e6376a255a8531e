package utils

import "testing"

type testPayload struct {
	Name  string `validate:"required,namemin"`
	Email string `validate:"required,emailok"`
}

func TestValidateStruct_Valid(t *testing.T) {
	p := testPayload{Name: "Ana", Email: "ana@example.com"}
	if err := ValidateStruct(&p); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidateStruct_MissingRequired(t *testing.T) {
	p := testPayload{Email: "ana@example.com"}
	if err := ValidateStruct(&p); err == nil {
		t.Error("expected an error for missing name")
	}
}

func TestValidateStruct_NameTooShort(t *testing.T) {
	p := testPayload{Name: "A", Email: "ana@example.com"}
	if err := ValidateStruct(&p); err == nil {
		t.Error("expected an error for a one-character name")
	}
}

func TestValidateStruct_BadEmail(t *testing.T) {
	for _, email := range []string{"not-an-email", "a@b", "a b@x.com", "@x.com"} {
		p := testPayload{Name: "Ana", Email: email}
		if err := ValidateStruct(&p); err == nil {
			t.Errorf("expected an error for email %q", email)
		}
	}
}
