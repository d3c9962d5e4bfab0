package validation_test

import (
	"strings"
	"testing"

	"github.com/nextstep/gift/internal/domain/validation"
)

func TestNameAcceptsAllowedCharacters(t *testing.T) {
	valid := []string{
		"아메리카노",
		"Coffee (Tall)",
		"[Set] A+B",
		"빵&우유/세트_1",
		"ㄱㄴㄷ ㅏㅑ",
	}
	for _, name := range valid {
		if errs := validation.Name(name, "Product name", 15, true); len(errs) != 0 {
			t.Fatalf("expected %q to be valid, got %v", name, errs)
		}
	}
}

func TestNameBlankShortCircuits(t *testing.T) {
	for _, name := range []string{"", "   "} {
		errs := validation.Name(name, "Option name", 50, false)
		if len(errs) != 1 || errs[0] != "Option name is required." {
			t.Fatalf("unexpected errors for %q: %v", name, errs)
		}
	}
}

func TestNameLengthCountsRunes(t *testing.T) {
	if errs := validation.Name("가나다라마바사아자차카타파하거", "Product name", 15, true); len(errs) != 0 {
		t.Fatalf("15 korean characters should be accepted, got %v", errs)
	}

	errs := validation.Name("가나다라마바사아자차카타파하거너", "Product name", 15, true)
	if len(errs) != 1 || errs[0] != "Product name must be at most 15 characters." {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestNameRejectsSpecialCharacters(t *testing.T) {
	errs := validation.Name("상품!@#", "Product name", 15, true)
	if len(errs) != 1 || !strings.Contains(errs[0], "invalid special characters") {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestNameKakaoRule(t *testing.T) {
	errs := validation.Name("카카오선물", "Product name", 15, true)
	if len(errs) != 1 || !strings.Contains(errs[0], "requires approval from the MD team") {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if errs := validation.Name("카카오선물", "Option name", 50, false); len(errs) != 0 {
		t.Fatalf("option names skip the kakao rule, got %v", errs)
	}
}

func TestNameCollectsMultipleErrors(t *testing.T) {
	errs := validation.Name(strings.Repeat("a", 51)+"!", "Option name", 50, false)
	if len(errs) != 2 {
		t.Fatalf("expected length and character errors, got %v", errs)
	}
}

func TestCheckNameWrapsError(t *testing.T) {
	err := validation.CheckName("", "Option name", 50, false)
	if !validation.IsError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "Option name is required." {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if validation.CheckName("옵션A", "Option name", 50, false) != nil {
		t.Fatalf("expected nil for a valid name")
	}
}
