// utils/otp.go
package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// GenerateNumericOTP returns a random numeric code of the given length using crypto/rand
func GenerateNumericOTP(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("otp length must be positive")
	}
	const digits = "0123456789"
	result := make([]byte, length)
	max := big.NewInt(int64(len(digits)))
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = digits[num.Int64()]
	}
	return string(result), nil
}
