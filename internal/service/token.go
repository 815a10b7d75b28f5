package service

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// randomToken генерирует случайный токен из n символов [a-z2-7]
func randomToken(n int) (string, error) {
	// 5 бит на символ
	bytes := make([]byte, (n*5+7)/8)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}

	code := strings.ToLower(tokenEncoding.EncodeToString(bytes))
	if len(code) > n {
		code = code[:n]
	}
	return code, nil
}
