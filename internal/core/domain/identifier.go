package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Strategy names the resolver step that located an account.
type Strategy string

const (
	StrategyID            Strategy = "id"
	StrategyEmail         Strategy = "email"
	StrategyAccountNumber Strategy = "account_number"
	StrategyCardNumber    Strategy = "card_number"
	StrategyPhoneNumber   Strategy = "phone_number"
)

// RawIDLength is the length of an internal account id (canonical UUID form).
const RawIDLength = 36

const (
	accountNumberDigits  = 10
	accountNumberModulus = 10_000_000_000
	minCardDigits        = 12
	minPhoneDigits       = 9
)

// ResolvedAccount is an account together with the strategy that found it.
type ResolvedAccount struct {
	Account  Account  `json:"account"`
	Strategy Strategy `json:"strategy"`
}

// IsRawAccountID reports whether s has the exact shape of an internal id.
func IsRawAccountID(s string) bool {
	if len(s) != RawIDLength {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// LooksLikeEmail reports whether s should be tried as an email address.
func LooksLikeEmail(s string) bool {
	return strings.Contains(s, "@")
}

// NormalizeEmail lower-cases an email for comparison.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// HasAccountNumberPrefix reports whether s starts with prefix, ignoring case.
func HasAccountNumberPrefix(s, prefix string) bool {
	return prefix != "" && strings.HasPrefix(strings.ToUpper(s), strings.ToUpper(prefix))
}

// NormalizeAccountNumber upper-cases an account number for comparison.
func NormalizeAccountNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// DeriveAccountNumber computes the account number assigned to accountID.
// The digits are the first eight bytes of SHA-256(accountID) read as a
// big-endian integer, reduced to ten decimal digits.
func DeriveAccountNumber(prefix, accountID string) string {
	sum := sha256.Sum256([]byte(accountID))
	n := binary.BigEndian.Uint64(sum[:8]) % accountNumberModulus
	return fmt.Sprintf("%s%0*d", strings.ToUpper(prefix), accountNumberDigits, n)
}

// StripWhitespace removes every whitespace rune from s.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LooksLikeCardNumber reports whether s is at least twelve digits once whitespace is removed.
func LooksLikeCardNumber(s string) bool {
	stripped := StripWhitespace(s)
	return len(stripped) >= minCardDigits && isAllDigits(stripped)
}

// CardNumberVariants returns the stored representations tried for a card number:
// as given, whitespace-stripped, and grouped by four digits.
func CardNumberVariants(s string) []string {
	stripped := StripWhitespace(s)
	var grouped strings.Builder
	for i, r := range stripped {
		if i > 0 && i%4 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(r)
	}
	return uniqueNonEmpty(s, stripped, grouped.String())
}

func stripPhoneSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s)
}

// LooksLikePhoneNumber reports whether s starts with '+' or is mostly digits
// with at least nine digits once spaces and dashes are removed.
func LooksLikePhoneNumber(s string) bool {
	if strings.HasPrefix(s, "+") {
		return true
	}
	stripped := stripPhoneSeparators(s)
	digits := 0
	for _, r := range stripped {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits && digits*2 > len(stripped)
}

// PhoneNumberVariants returns the stored representations tried for a phone number.
func PhoneNumberVariants(s string) []string {
	return uniqueNonEmpty(s, stripPhoneSeparators(s))
}

func uniqueNonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
