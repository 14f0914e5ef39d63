package purchase

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

var fuelCodes = map[string]string{
	"pertalite": "PLT",
	"solar":     "SLR",
	"biosolar":  "BSL",
	"pertamax":  "PMX",
	"dexlite":   "DXL",
}

// FuelCode returns the short code used inside sale identifiers.  Known fuel
// labels map to fixed codes; anything else uses its first three letters.
func FuelCode(fuelType string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(fuelType) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	key := b.String()
	if code, ok := fuelCodes[key]; ok {
		return code
	}
	code := strings.ToUpper(key)
	if len(code) > 3 {
		code = code[:3]
	}
	if code == "" {
		return "BBM"
	}
	return code
}

// SaleID builds STATION-PLATE-YYYYMMDD-FUELCODE-SEQ with a 4-digit sequence.
// The date is taken in UTC so every terminal produces the same day string.
func SaleID(station, plate, fuelType string, at time.Time, seq uint64) string {
	return fmt.Sprintf("%s-%s-%s-%s-%04d",
		strings.ToUpper(station),
		NormalizePlate(plate),
		at.UTC().Format("20060102"),
		FuelCode(fuelType),
		seq,
	)
}
