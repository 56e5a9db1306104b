// Package encoding provides text encoding utilities for model file names.
package encoding

import (
	"fmt"
	"strings"

	textencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Lookup returns the decoder-capable encoding for a code page name.
// An empty name or "utf-8" returns nil with no error.
func Lookup(name string) (textencoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "euc-kr", "euckr", "cp949":
		return korean.EUCKR, nil
	case "shift-jis", "shift_jis", "sjis":
		return japanese.ShiftJIS, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unknown name encoding %q", name)
	}
}

// DecodeName converts a name in the given code page to a UTF-8 string.
// Returns the original bytes as a string if the encoding is unknown or
// conversion fails.
func DecodeName(data []byte, name string) string {
	enc, err := Lookup(name)
	if err != nil || enc == nil {
		return string(data)
	}
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// EncodeName converts a UTF-8 name to the given code page.
// Returns the original bytes if the encoding is unknown or conversion fails.
func EncodeName(s string, name string) []byte {
	enc, err := Lookup(name)
	if err != nil || enc == nil {
		return []byte(s)
	}
	result, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}
