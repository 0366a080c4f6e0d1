package candidate

import (
	"errors"
	"fmt"
	"strings"
)

// Symbol groups selectable through charset flags.
const (
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits    = "0123456789"
	Specials  = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Charset flag letters.
const (
	FlagLowercase = 'a'
	FlagUppercase = 'A'
	FlagDigits    = '1'
	FlagSpecials  = 's'
)

// DefaultFlags selects lowercase, uppercase and digits.
const DefaultFlags = "aA1"

// ErrUnknownFlag indicates a charset flag letter outside a, A, 1, s.
var ErrUnknownFlag = errors.New("unknown charset flag")

// FromFlags assembles a charset from flag letters. Groups are always
// concatenated in the order lowercase, uppercase, digits, specials,
// regardless of the order of the letters in flags.
func FromFlags(flags string) (Charset, error) {
	for _, flag := range flags {
		switch flag {
		case FlagLowercase, FlagUppercase, FlagDigits, FlagSpecials:
		default:
			return Charset{}, fmt.Errorf("%w: %q (use a, A, 1, s)", ErrUnknownFlag, flag)
		}
	}

	var sb strings.Builder

	if strings.ContainsRune(flags, FlagLowercase) {
		sb.WriteString(Lowercase)
	}

	if strings.ContainsRune(flags, FlagUppercase) {
		sb.WriteString(Uppercase)
	}

	if strings.ContainsRune(flags, FlagDigits) {
		sb.WriteString(Digits)
	}

	if strings.ContainsRune(flags, FlagSpecials) {
		sb.WriteString(Specials)
	}

	return NewCharset(sb.String())
}
