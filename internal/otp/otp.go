// Package otp issues the one-time numeric codes used by the email
// verification and password reset flows.
//
// A code is a 6-digit, uniformly distributed decimal string drawn from
// crypto/rand, paired with an absolute expiry instant. Codes are not
// globally unique: uniqueness is per identity, and each identity carries
// two independent code slots (verification and reset), so a freshly
// issued code simply overwrites the previous one in its slot.
package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

// CodeLength is the number of decimal digits in an issued code.
const CodeLength = 6

// codeSpace is the number of distinct 6-digit codes (000000–999999).
var codeSpace = big.NewInt(1_000_000)

// Issuer produces one-time codes with a fixed validity window.
// The zero value is not usable; construct with NewIssuer.
type Issuer struct {
	lifetime time.Duration
	now      func() time.Time
}

// NewIssuer constructs an Issuer whose codes expire lifetime after issuance.
func NewIssuer(lifetime time.Duration) *Issuer {
	return &Issuer{
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Issue generates a fresh 6-digit code and its absolute expiry instant.
//
// The code is uniformly distributed over the full 000000–999999 range and is
// left-padded with zeros, so leading-zero codes are as likely as any other.
func (i *Issuer) Issue() (code string, expiresAt time.Time, err error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error generating one-time code: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()), i.now().Add(i.lifetime), nil
}

// Matches compares a presented code against the stored one in constant time.
// Both empty strings never match: a slot that was cleared after use must not
// accept an empty presentation.
func Matches(presented, stored string) bool {
	if presented == "" || stored == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}

// Expired reports whether the given expiry instant has passed at the moment
// of the call. A nil expiry counts as expired: a slot without a deadline
// holds no usable code.
func Expired(expiresAt *time.Time) bool {
	return expiresAt == nil || time.Now().After(*expiresAt)
}
