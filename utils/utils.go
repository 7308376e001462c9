package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// accessCodeAlphabet omits characters that are easy to misread on paper.
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const AccessCodeLength = 8

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateAccessCode returns a random team access code such as "K7MX-P2QD".
func GenerateAccessCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	for i := 0; i < AccessCodeLength; i++ {
		if i == AccessCodeLength/2 {
			sb.WriteByte('-')
		}
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate access code: %w", err)
		}
		sb.WriteByte(accessCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeAccessCode makes user input comparable to a generated code.
func NormalizeAccessCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, " ", "")
	if len(code) == AccessCodeLength && !strings.Contains(code, "-") {
		code = code[:AccessCodeLength/2] + "-" + code[AccessCodeLength/2:]
	}
	return code
}
