package domain

import (
	"strings"

	dErrors "verireg/pkg/domain-errors"
)

// maxAccountIDLength bounds account handles at the trust boundary.
const maxAccountIDLength = 128

// AccountID is the opaque handle of an authenticated caller. The registry
// never interprets it beyond equality; hosts may use SS58 addresses, hex
// addresses or UUIDs.
type AccountID string

// ParseAccountID validates an account handle at an API boundary.
// Surrounding whitespace is trimmed; the remaining value must be 1..128
// characters from [A-Za-z0-9._:@-].
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account is required")
	}
	if len(s) > maxAccountIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account must be 128 characters or less")
	}
	for i := 0; i < len(s); i++ {
		if !isAccountChar(s[i]) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "account contains invalid characters")
		}
	}
	return AccountID(s), nil
}

func isAccountChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == ':', c == '@', c == '-':
		return true
	}
	return false
}

func (a AccountID) String() string {
	return string(a)
}

// IsNil reports whether the account is unset.
func (a AccountID) IsNil() bool {
	return a == ""
}
