package purchase

import (
	"errors"
	"testing"
)

func TestKeypadDigitsShiftValue(t *testing.T) {
	var k Keypad
	n, err := k.PressAll(0, "5", "0", "0", "0")
	if err != nil {
		t.Fatalf("PressAll: %v", err)
	}
	if n != 5000 {
		t.Errorf("Expected 5000, got %d", n)
	}
}

func TestKeypadLeadingZerosIgnored(t *testing.T) {
	var k Keypad
	n, _ := k.PressAll(0, "0", "0", "7")
	if n != 7 {
		t.Errorf("Expected 7, got %d", n)
	}
}

func TestKeypadThousands(t *testing.T) {
	var k Keypad
	tests := []struct {
		name  string
		start int64
		want  int64
	}{
		{"nonzero multiplies", 15, 15000},
		{"zero stays zero", 0, 0},
		{"over cap unchanged", 20_000, 20_000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := k.Press(tc.start, KeyThousands)
			if err != nil {
				t.Fatalf("Press: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestKeypadClearAndBackspace(t *testing.T) {
	var k Keypad
	if n, _ := k.Press(12345, KeyClear); n != 0 {
		t.Errorf("Clear: expected 0, got %d", n)
	}
	if n, _ := k.Press(12345, KeyBackspace); n != 1234 {
		t.Errorf("Backspace: expected 1234, got %d", n)
	}
	if n, _ := k.Press(7, "del"); n != 0 {
		t.Errorf("Backspace on one digit: expected 0, got %d", n)
	}
}

func TestKeypadCap(t *testing.T) {
	k := Keypad{Max: 9999}
	n, _ := k.PressAll(0, "9", "9", "9", "9", "9")
	if n != 9999 {
		t.Errorf("Expected cap to hold value at 9999, got %d", n)
	}
	if k.Limit() != 9999 || (Keypad{}).Limit() != DefaultMaxNominal {
		t.Errorf("Limit: got %d and %d", k.Limit(), Keypad{}.Limit())
	}
}

func TestKeypadUnknownKey(t *testing.T) {
	var k Keypad
	n, err := k.Press(42, "x")
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("Expected ErrUnknownKey, got %v", err)
	}
	if n != 42 {
		t.Errorf("Expected value unchanged, got %d", n)
	}
}
