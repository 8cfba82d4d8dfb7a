package validator

import "testing"

func TestIdentifierRule(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type input struct {
		Identifier string `validate:"required,identifier"`
	}

	valid := []string{
		"+15551234567",
		"15551234567",
		"919876543210",
		"shopper@example.com",
		"first.last+tag@mail.co.id",
	}
	for _, id := range valid {
		if err := v.Validate(input{Identifier: id}); err != nil {
			t.Fatalf("expected %q to be valid, got %v", id, err)
		}
	}

	invalid := []string{
		"",
		"12345",
		"not-an-email",
		"@example.com",
		"+1 555 123",
		"user@nodot",
	}
	for _, id := range invalid {
		if err := v.Validate(input{Identifier: id}); err == nil {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}

func TestAlphaspaceRule(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type input struct {
		Name string `validate:"required,alphaspace"`
	}

	if err := v.Validate(input{Name: "Asha Rahman"}); err != nil {
		t.Fatalf("expected valid name, got %v", err)
	}
	if err := v.Validate(input{Name: "asha123"}); err == nil {
		t.Fatalf("expected digits to be rejected")
	}
}

func TestValidateReturnsFieldMap(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type input struct {
		Identifier string `validate:"required,identifier"`
	}

	err = v.Validate(input{})
	verr, ok := err.(V10ValidationError)
	if !ok {
		t.Fatalf("expected V10ValidationError, got %T", err)
	}
	if _, ok := verr.Values()["identifier"]; !ok {
		t.Fatalf("expected identifier field error, got %v", verr.Values())
	}
}
