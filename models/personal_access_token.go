package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const tokenSecretLength = 40

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PersonalAccessToken is an opaque bearer credential issued at login.
// Only the SHA-256 of the secret is stored; the client holds "{id}|{secret}".
type PersonalAccessToken struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"not null;index"`
	Name       string `gorm:"size:255;not null"`
	TokenHash  string `gorm:"size:64;uniqueIndex;not null"`
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (PersonalAccessToken) TableName() string {
	return "personal_access_tokens"
}

// NewTokenSecret returns a random alphanumeric secret.
func NewTokenSecret() (string, error) {
	var sb strings.Builder
	sb.Grow(tokenSecretLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := 0; i < tokenSecretLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate token secret: %w", err)
		}
		sb.WriteByte(tokenAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// HashTokenSecret returns the hex SHA-256 stored in TokenHash.
func HashTokenSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// PlainText renders the value handed to the client.
func (t PersonalAccessToken) PlainText(secret string) string {
	return fmt.Sprintf("%d|%s", t.ID, secret)
}

// ParsePlainTextToken splits "{id}|{secret}".
func ParsePlainTextToken(token string) (uint, string, bool) {
	idPart, secret, found := strings.Cut(token, "|")
	if !found || secret == "" {
		return 0, "", false
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return 0, "", false
	}
	return uint(id), secret, true
}
