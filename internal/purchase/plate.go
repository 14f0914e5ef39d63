package purchase

import (
	"errors"
	"strings"
	"unicode"
)

// Plate validation failures.  They mirror the reasons the roadside detector
// reports when it rejects an OCR reading.
var (
	ErrPlateEmpty   = errors.New("plate is empty")
	ErrPlateRegion  = errors.New("invalid region")
	ErrPlateNumber  = errors.New("invalid numeric part")
	ErrPlateLetters = errors.New("invalid letter part")
)

var plateRegions = map[string]bool{}

func init() {
	for _, r := range strings.Fields(`B A AA AD K R G H AG AE L M N S W P AB
		KU KT KH KB DA BA BD BB BE BG BH BK BL BM BN BP D F E Z T DC DD DN DT
		DL DM DB DK ED EA EB DH DR DE DG PA PB`) {
		plateRegions[r] = true
	}
}

// digit -> letter corrections for the suffix, where OCR often confuses them.
var suffixFix = map[rune]rune{
	'0': 'O', '1': 'I', '2': 'Z', '3': 'B', '4': 'A',
	'5': 'S', '6': 'G', '7': 'Z', '8': 'B', '9': 'G',
}

// Plate is a parsed Indonesian license plate.
type Plate struct {
	Region string
	Number string
	Suffix string
}

// String renders the plate in its normalised key form, e.g. "B1234XYZ".
func (p Plate) String() string { return p.Region + p.Number + p.Suffix }

// NormalizePlate upper-cases the plate and drops every character that is not
// a letter or a digit.
func NormalizePlate(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParsePlate normalises raw and validates it against the plate grammar:
// a 1-2 letter region code, 1-4 digits and one to three suffix letters.
// A leading "I" or "1" (frame noise read by OCR) is dropped, digits in the
// suffix are corrected to the letters they resemble and a trailing "I" is
// discarded.
func ParsePlate(raw string) (Plate, error) {
	s := NormalizePlate(raw)
	if s == "" {
		return Plate{}, ErrPlateEmpty
	}
	if (s[0] == 'I' || s[0] == '1') && len(s) > 1 {
		s = s[1:]
	}

	var p Plate
	switch {
	case len(s) >= 2 && plateRegions[s[:2]]:
		p.Region, s = s[:2], s[2:]
	case plateRegions[s[:1]]:
		p.Region, s = s[:1], s[1:]
	default:
		return Plate{}, ErrPlateRegion
	}

	n := 0
	for n < len(s) && n < 4 && unicode.IsDigit(rune(s[n])) {
		n++
	}
	if n == 0 {
		return Plate{}, ErrPlateNumber
	}
	p.Number, s = s[:n], s[n:]

	var suffix strings.Builder
	for _, r := range s {
		if fixed, ok := suffixFix[r]; ok {
			r = fixed
		}
		suffix.WriteRune(r)
	}
	rest := strings.TrimSuffix(suffix.String(), "I")
	if rest == "" || len(rest) > 3 {
		return Plate{}, ErrPlateLetters
	}
	for _, r := range rest {
		if r < 'A' || r > 'Z' {
			return Plate{}, ErrPlateLetters
		}
	}
	p.Suffix = rest
	return p, nil
}
