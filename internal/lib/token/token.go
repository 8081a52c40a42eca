// Package token содержит функции для генерации серверных секретов:
// токенов подтверждения email, токенов сброса пароля, API-ключей и
// секретов вебхуков. Все токены — случайные hex-строки из crypto/rand.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Префиксы секретов, генерируемых сервером.
const (
	APIKeyPrefix        = "crm_live_"
	WebhookSecretPrefix = "whsec_"
)

// NewHex возвращает случайную hex-строку из n байт энтропии.
func NewHex(n int) (string, error) {
	const op = "token.NewHex"
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(b), nil
}

// NewVerificationToken возвращает одноразовый токен подтверждения email.
func NewVerificationToken() (string, error) {
	return NewHex(20)
}

// NewResetToken возвращает сырой токен сброса пароля. В базе хранится
// только его SHA-256 хэш; сырое значение уходит пользователю в письме.
func NewResetToken() (string, error) {
	return NewHex(32)
}

// NewAPIKey возвращает секрет API-ключа вида crm_live_<32 hex>.
func NewAPIKey() (string, error) {
	s, err := NewHex(16)
	if err != nil {
		return "", err
	}
	return APIKeyPrefix + s, nil
}

// NewWebhookSecret возвращает секрет вебхука вида whsec_<48 hex>.
func NewWebhookSecret() (string, error) {
	s, err := NewHex(24)
	if err != nil {
		return "", err
	}
	return WebhookSecretPrefix + s, nil
}

// NewSupportTicket возвращает номер тикета поддержки вида CRM-<6 цифр>.
func NewSupportTicket() (string, error) {
	const op = "token.NewSupportTicket"
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("CRM-%d", n.Int64()+100000), nil
}

// HashSHA256 возвращает hex-представление SHA-256 хэша строки.
func HashSHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Mask возвращает маскированную форму секрета для отображения:
// первые 12 и последние 4 символа, середина заменена многоточием.
func Mask(secret string) string {
	if len(secret) <= 16 {
		return "****"
	}
	return secret[:12] + "..." + secret[len(secret)-4:]
}
