package validation

import (
	"testing"

	apperrors "courtside/pkg/errors"
)

type sample struct {
	Name  string `json:"name" validate:"required,min=2"`
	Kind  string `json:"kind" validate:"omitempty,oneof=FLAT PERCENT"`
	Opens string `json:"opens" validate:"omitempty,datetime=15:04"`
}

func TestStruct_TranslatesByJSONName(t *testing.T) {
	v := New()

	err := Struct(v, &sample{Kind: "OTHER", Opens: "25:99"})
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(verrs), verrs)
	}

	fields := map[string]string{}
	for _, e := range verrs {
		fields[e.Field] = e.Message
	}
	if fields["name"] != "name is required" {
		t.Errorf("unexpected name message %q", fields["name"])
	}
	if fields["kind"] != "kind must be one of: FLAT PERCENT" {
		t.Errorf("unexpected kind message %q", fields["kind"])
	}
	if _, ok := fields["opens"]; !ok {
		t.Error("expected opens error")
	}
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(New(), &sample{Name: "ok", Kind: "FLAT", Opens: "08:00"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestToAppError(t *testing.T) {
	err := ToAppError("Invalid court", Fail("opens", "must be before closes"))
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation code, got %v", err)
	}
}
