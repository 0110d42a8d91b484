// Package scancode encodes and decodes the scannable values embedded in
// loan/debt QR codes. A scan value is either a bare token or a URL of the
// form https://{host}/{purpose-path}/{token}; validation accepts both.
package scancode

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyValue = errors.New("empty scan value")

const tokenBytes = 32

// NewValue returns a high-entropy random token value.
func NewValue() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("scancode: rand.Read: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Encode builds the URL form for a purpose path and token value.
func Encode(host, purposePath, value string) string {
	return fmt.Sprintf("https://%s/%s/%s", host, purposePath, value)
}

// Extract pulls the token out of a scanned value. For URLs it takes the
// trailing path segment and discards any query string; bare values pass
// through unchanged.
func Extract(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyValue
	}

	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")

	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return "", ErrEmptyValue
	}
	return s, nil
}
