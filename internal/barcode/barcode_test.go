package barcode

import "testing"

func TestNormalize_BoxLayoutPrefixes(t *testing.T) {
	if got := Normalize("ца12345678", RoleBox); got != "wb12345678" {
		t.Errorf("Normalize = %q, want wb12345678", got)
	}
	if got := Normalize("ЦА12345678", RoleBox); got != "wb12345678" {
		t.Errorf("uppercase prefix: Normalize = %q, want wb12345678", got)
	}
	if got := Normalize("ци_ABC-123", RoleBox); got != "WB_ABC-123" {
		t.Errorf("Normalize = %q, want WB_ABC-123", got)
	}
}

func TestNormalize_ItemLayoutPrefix(t *testing.T) {
	if got := Normalize("щят123456", RoleItem); got != "OZN123456" {
		t.Errorf("Normalize = %q, want OZN123456", got)
	}
}

func TestNormalize_PassThrough(t *testing.T) {
	for _, code := range []string{"WB_ABC123", "1234567890123", "OZN123456", ""} {
		if got := Normalize(code, RoleBox); got != code {
			t.Errorf("Normalize(%q, box) = %q, want unchanged", code, got)
		}
		if got := Normalize(code, RoleItem); got != code {
			t.Errorf("Normalize(%q, item) = %q, want unchanged", code, got)
		}
	}
	// The item prefix must not rewrite box scans and vice versa.
	if got := Normalize("щят123456", RoleBox); got != "щят123456" {
		t.Errorf("item prefix applied to box role: %q", got)
	}
	if got := Normalize("ца12345678", RoleItem); got != "ца12345678" {
		t.Errorf("box prefix applied to item role: %q", got)
	}
}

func TestValid_LengthBound(t *testing.T) {
	// 7 digits is below the bound in every mode.
	if Valid("1234567", RoleBox, true) {
		t.Error("7 digits should be invalid")
	}
	if Valid("1234567", RoleBox, false) {
		t.Error("7 digits should be invalid even permissively")
	}
	// Exactly 8 digits passes.
	if !Valid("12345678", RoleBox, true) {
		t.Error("8 digits should be valid")
	}
	// 41 characters exceeds the bound.
	long := ""
	for i := 0; i < 41; i++ {
		long += "1"
	}
	if Valid(long, RoleBox, true) || Valid(long, RoleBox, false) {
		t.Error("41 characters should be invalid")
	}
}

func TestValid_StrictBox(t *testing.T) {
	if !Valid("WB_ABC123", RoleBox, true) {
		t.Error("WB_ABC123 should be valid")
	}
	if !Valid("wb_abc123", RoleBox, true) {
		t.Error("WB prefix match is case-insensitive")
	}
	if Valid("wb_ab", RoleBox, true) {
		t.Error("wb_ab is below the length bound despite the prefix")
	}
	if Valid("WB_ABC.123", RoleBox, true) {
		t.Error("dots are not allowed after WB_ in strict mode")
	}
	if Valid("ABC12345", RoleBox, true) {
		t.Error("strict non-WB boxes must be all digits")
	}
	if !Valid("12345678901234567890", RoleBox, true) {
		t.Error("long digit runs are valid boxes")
	}
}

func TestValid_StrictItem(t *testing.T) {
	if !Valid("1234567890123", RoleItem, true) {
		t.Error("13 digits should be a valid EAN-13")
	}
	if Valid("123456789012", RoleItem, true) {
		t.Error("12 digits is not EAN-13 and not OZN")
	}
	if !Valid("OZN123456", RoleItem, true) {
		t.Error("OZN123456 should be valid")
	}
	if !Valid("ozn123456", RoleItem, true) {
		t.Error("OZN prefix match is case-insensitive")
	}
	if Valid("OZN", RoleItem, true) {
		t.Error("OZN alone is below the length bound")
	}
	if Valid("OZNABCDEF", RoleItem, true) {
		t.Error("OZN must be followed by digits")
	}
}

func TestValid_StrictUnknownRole(t *testing.T) {
	if !Valid("12345678", Role(99), true) {
		t.Error("unknown role falls back to digits-only")
	}
	if Valid("WB_ABC123", Role(99), true) {
		t.Error("unknown role rejects non-digits")
	}
}

func TestValid_Permissive(t *testing.T) {
	for _, code := range []string{"WB_ABC123", "abc-12.3/4", "12345678"} {
		if !Valid(code, RoleItem, false) {
			t.Errorf("%q should pass permissive validation", code)
		}
	}
	if Valid("abc 1234", RoleItem, false) {
		t.Error("spaces are not allowed")
	}
	if Valid("abc#1234", RoleItem, false) {
		t.Error("# is not allowed")
	}
}

func TestValid_PermissiveNonLatin(t *testing.T) {
	// Word characters from any script count, same as the length bound,
	// which is measured in code points.
	if !Valid("артикул-12", RoleItem, false) {
		t.Error("Cyrillic word characters should pass permissive validation")
	}
	// 8 Cyrillic letters: 16 bytes but exactly at the minimum length.
	if !Valid("артикулы", RoleBox, false) {
		t.Error("8 code points should meet the minimum length")
	}
	// 7 code points stays below the bound regardless of byte width.
	if Valid("артикул", RoleBox, false) {
		t.Error("7 code points should be below the minimum length")
	}
}
