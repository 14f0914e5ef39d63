package purchase

import (
	"errors"
	"strings"
)

// Keypad keys besides the ten digits.
const (
	KeyThousands = "000"
	KeyClear     = "C"
	KeyBackspace = "DEL"
)

// DefaultMaxNominal caps the keypad at ten million rupiah.
const DefaultMaxNominal int64 = 10_000_000

// ErrUnknownKey is returned by Keypad.Press for keys outside the keypad.
var ErrUnknownKey = errors.New("unknown keypad key")

// Keypad accumulates a nominal amount the way the pump terminal keypad does:
// digits shift the current value left (n*10+d), they are not concatenated as
// text, so leading zeros never appear.
type Keypad struct {
	Max int64 // values above Max are refused; <=0 means DefaultMaxNominal
}

// Limit is the largest nominal the keypad accepts.
func (k Keypad) Limit() int64 {
	if k.Max <= 0 {
		return DefaultMaxNominal
	}
	return k.Max
}

// Press applies key to nominal and returns the new nominal.  A key that would
// push the value past Max leaves it unchanged.
func (k Keypad) Press(nominal int64, key string) (int64, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if nominal < 0 {
		nominal = 0
	}
	switch key {
	case KeyClear:
		return 0, nil
	case KeyBackspace, "BACKSPACE":
		return nominal / 10, nil
	case KeyThousands:
		if nominal == 0 {
			return 0, nil
		}
		if nominal > k.Limit()/1000 {
			return nominal, nil
		}
		return nominal * 1000, nil
	}
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return nominal, ErrUnknownKey
	}
	d := int64(key[0] - '0')
	if nominal > (k.Limit()-d)/10 {
		return nominal, nil
	}
	return nominal*10 + d, nil
}

// PressAll applies keys in order, stopping at the first unknown key.
func (k Keypad) PressAll(nominal int64, keys ...string) (int64, error) {
	var err error
	for _, key := range keys {
		if nominal, err = k.Press(nominal, key); err != nil {
			return nominal, err
		}
	}
	return nominal, nil
}
