// Package authkey генерирует случайные ключи для подтверждения e-mail.
//
// Ключ — строка фиксированной длины из латинских букв и цифр,
// получаемая из криптографического источника случайности.
package authkey

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length — длина ключа подтверждения.
const Length = 8

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// New возвращает новый случайный ключ подтверждения.
func New() (string, error) {
	const op = "authkey.New"

	buf := make([]byte, Length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
