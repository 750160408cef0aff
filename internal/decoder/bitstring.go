package decoder

import (
	"github.com/cybertec-postgresql/pgparse/internal/buffer"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
)

// ValidateBinary checks the body of a B'...' literal. The scanner accepts
// any character there; PostgreSQL rejects bad digits when the value is
// converted to bit.
func ValidateBinary(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return newError(perrors.InvalidBinaryDigit, i, rune(s[i]))
		}
	}
	return nil
}

// ValidateHex checks the body of an X'...' literal.
func ValidateHex(s string) error {
	for i := 0; i < len(s); i++ {
		if !buffer.IsHexDigit(s[i]) {
			return newError(perrors.InvalidHexDigit, i, rune(s[i]))
		}
	}
	return nil
}

// HexToBinary expands the digits of a hexadecimal bit string into binary
// digits, four per hex digit. s must already be valid.
func HexToBinary(s string) string {
	out := make([]byte, 0, 4*len(s))
	for i := 0; i < len(s); i++ {
		v := buffer.HexValue(s[i])
		for bit := 3; bit >= 0; bit-- {
			out = append(out, '0'+(v>>bit)&1)
		}
	}
	return string(out)
}
