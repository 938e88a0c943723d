// Package domain holds typed identifiers and amount arithmetic shared across
// coffer services. Accounts are opaque host-ledger identities: coffer never
// creates or destroys them, only references them.
package domain

import (
	"strconv"

	dErrors "coffer/pkg/domain-errors"
)

// MaxAccountIDLength bounds stored key size for account identifiers.
const MaxAccountIDLength = 64

// AccountID is an opaque host-ledger account identifier.
type AccountID string

// ParseAccountID validates an account identifier at a trust boundary.
// Identifiers must be non-empty, at most MaxAccountIDLength bytes, and
// printable ASCII without whitespace so they are safe as storage keys.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id cannot be empty")
	}
	if len(s) > MaxAccountIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account id exceeds maximum length")
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c > '~' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "account id contains invalid characters")
		}
	}
	return AccountID(s), nil
}

func (a AccountID) String() string { return string(a) }

// IsZero reports whether the id is the empty value.
func (a AccountID) IsZero() bool { return a == "" }

// VaultID identifies a savings vault within one account's namespace.
// IDs are assigned sequentially starting at 1 and are never reused after a
// vault closes; zero is reserved as the absent value.
type VaultID uint64

// ParseVaultID parses the decimal form used in URLs.
func ParseVaultID(s string) (VaultID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "vault id cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "vault id must be a non-negative integer")
	}
	return VaultID(v), nil
}

func (v VaultID) String() string { return strconv.FormatUint(uint64(v), 10) }
