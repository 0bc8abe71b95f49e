package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// DefaultReferralPrefix is prepended to every generated referral code
const DefaultReferralPrefix = "TN"

const (
	referralSuffixLen = 6
	base36Alphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// maxReferralSuffix is 36^6
var maxReferralSuffix = big.NewInt(2176782336)

// GenerateReferralCode generates a referral code with the given prefix
// Format: {PREFIX}{RANDOM} where RANDOM is 6 upper-case base-36 characters
// Example: TN0A9ZQ3
func GenerateReferralCode(prefix string) (string, error) {
	n, err := rand.Int(rand.Reader, maxReferralSuffix)
	if err != nil {
		return "", err
	}

	suffix := strings.ToUpper(n.Text(36))
	if len(suffix) < referralSuffixLen {
		suffix = strings.Repeat("0", referralSuffixLen-len(suffix)) + suffix
	}

	return prefix + suffix, nil
}

// IsReferralCode reports whether code has the prefix followed by 6 base-36 characters
func IsReferralCode(prefix, code string) bool {
	if !strings.HasPrefix(code, prefix) {
		return false
	}
	suffix := code[len(prefix):]
	if len(suffix) != referralSuffixLen {
		return false
	}
	for _, r := range suffix {
		if !strings.ContainsRune(base36Alphabet, r) {
			return false
		}
	}
	return true
}
