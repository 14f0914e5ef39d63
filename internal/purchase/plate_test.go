package purchase

import (
	"errors"
	"testing"
)

func TestParsePlateValid(t *testing.T) {
	tests := []struct {
		raw  string
		want Plate
	}{
		{"B 1234 XYZ", Plate{"B", "1234", "XYZ"}},
		{"ab1c", Plate{"AB", "1", "C"}},
		{"IB1234XY", Plate{"B", "1234", "XY"}},    // leading OCR noise
		{"D 4321 A8C", Plate{"D", "4321", "ABC"}}, // 4->A, 8->B
		{"L1234ABI", Plate{"L", "1234", "AB"}},    // trailing I dropped
		{"B12345X", Plate{"B", "1234", "SX"}},     // fifth digit read as a letter
	}
	for _, tc := range tests {
		got, err := ParsePlate(tc.raw)
		if err != nil {
			t.Errorf("ParsePlate(%q): unexpected error %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePlate(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}

func TestParsePlateInvalid(t *testing.T) {
	tests := []struct {
		raw  string
		want error
	}{
		{"", ErrPlateEmpty},
		{" - ", ErrPlateEmpty},
		{"Q1234AB", ErrPlateRegion},
		{"BXYZ", ErrPlateNumber},
		{"B1234", ErrPlateLetters},
		{"B1234ABCD", ErrPlateLetters},
	}
	for _, tc := range tests {
		_, err := ParsePlate(tc.raw)
		if !errors.Is(err, tc.want) {
			t.Errorf("ParsePlate(%q) error = %v, want %v", tc.raw, err, tc.want)
		}
	}
}

func TestPlateString(t *testing.T) {
	p, err := ParsePlate("ad 77 kz")
	if err != nil {
		t.Fatalf("ParsePlate: %v", err)
	}
	if p.String() != "AD77KZ" {
		t.Errorf("Expected AD77KZ, got %s", p.String())
	}
}
