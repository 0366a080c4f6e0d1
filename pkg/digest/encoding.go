// Package digest hashes password candidates with MD5 under a caller-selected
// text encoding and compares them against target digests.
package digest

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used when no encoding name is given.
const DefaultEncoding = "utf-8"

const (
	nameUTF8  = "utf-8"
	nameASCII = "ascii"
)

// Sentinel errors.
var (
	// ErrUnknownEncoding indicates an encoding name that cannot be resolved.
	ErrUnknownEncoding = errors.New("unknown text encoding")
	// ErrUnencodable indicates a candidate with characters the encoding cannot represent.
	ErrUnencodable = errors.New("candidate not representable in encoding")
)

// encodingAliases maps common spellings that the IANA index does not know.
var encodingAliases = map[string]string{
	"utf8":     nameUTF8,
	"utf_8":    nameUTF8,
	"us-ascii": nameASCII,
	"latin-1":  "latin1",
	"latin_1":  "latin1",
	"cp1252":   "windows-1252",
}

// Encoding is a resolved text encoding used to turn candidates into bytes.
type Encoding struct {
	enc       encoding.Encoding
	name      string
	asciiOnly bool
	stateless bool
}

// LookupEncoding resolves an encoding by name. IANA names are tried first,
// then WHATWG labels. An empty name selects UTF-8.
func LookupEncoding(name string) (Encoding, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		normalized = DefaultEncoding
	}

	if alias, ok := encodingAliases[normalized]; ok {
		normalized = alias
	}

	switch normalized {
	case nameUTF8:
		return Encoding{enc: unicode.UTF8, name: nameUTF8, stateless: true}, nil
	case nameASCII:
		return Encoding{enc: encoding.Nop, name: nameASCII, asciiOnly: true, stateless: true}, nil
	}

	enc, err := ianaindex.IANA.Encoding(normalized)
	if err != nil || enc == nil {
		enc, err = htmlindex.Get(normalized)
	}

	if err != nil || enc == nil {
		return Encoding{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}

	_, isCharmap := enc.(*charmap.Charmap)

	return Encoding{enc: enc, name: normalized, stateless: isCharmap}, nil
}

// Name returns the canonical lower-case name of the encoding.
func (e Encoding) Name() string {
	return e.name
}

// Stateless reports whether encoding a string equals concatenating the
// encodings of its runes, which lets symbols be encoded once up front.
func (e Encoding) Stateless() bool {
	return e.stateless
}

// NewDecoder returns a decoder from the encoding to UTF-8. The ascii encoding
// passes bytes through unchanged.
func (e Encoding) NewDecoder() *encoding.Decoder {
	if e.enc == nil {
		return encoding.Nop.NewDecoder()
	}

	return e.enc.NewDecoder()
}

// Encode converts s to bytes. Characters the encoding cannot represent yield
// an error wrapping [ErrUnencodable].
func (e Encoding) Encode(s string) ([]byte, error) {
	if e.enc == nil {
		return nil, fmt.Errorf("%w: zero Encoding", ErrUnknownEncoding)
	}

	if e.asciiOnly {
		for offset, r := range s {
			if r >= utf8.RuneSelf {
				return nil, fmt.Errorf("%w: %q at offset %d (%s)", ErrUnencodable, r, offset, e.name)
			}
		}

		return []byte(s), nil
	}

	out, err := e.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q (%s): %w", ErrUnencodable, s, e.name, err)
	}

	return out, nil
}
