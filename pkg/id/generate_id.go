package id

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"strconv"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewDigits returns an n-digit numeric string drawn uniformly from
// [10^(n-1), 10^n), so the leading digit is never zero.
func NewDigits(n int) (string, error) {
	if n <= 0 || n > 18 {
		return "", errors.New("id: digit count out of range")
	}
	lo := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(lo, big.NewInt(10)), lo)
	v, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return v.Add(v, lo).String(), nil
}

// NewLuhn returns an n-digit numeric string whose last digit is the Luhn
// check digit of the preceding ones. The first digit is fixed to prefix.
func NewLuhn(prefix byte, n int) (string, error) {
	if n < 2 || prefix < '1' || prefix > '9' {
		return "", errors.New("id: invalid luhn layout")
	}
	body := make([]byte, n-1)
	body[0] = prefix
	for i := 1; i < len(body); i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		body[i] = byte('0' + d.Int64())
	}
	return string(body) + strconv.Itoa(luhnCheckDigit(string(body))), nil
}

// LuhnValid reports whether s is all digits and passes the Luhn checksum.
func LuhnValid(s string) bool {
	if len(s) < 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return luhnCheckDigit(s[:len(s)-1]) == int(s[len(s)-1]-'0')
}

func luhnCheckDigit(body string) int {
	sum := 0
	double := true
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}
