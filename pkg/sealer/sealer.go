package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// Fallback key for local development. Production deployments set
	// MATCH_TOKEN_KEY to a base64-encoded 32 byte key.
	defaultKey = "yJ3kQmWnvT8pRd5xZc1BhUeoALgwF6NsIK9V+Dq+P70="

	envKey = "MATCH_TOKEN_KEY"
)

func sealKey() ([]byte, error) {
	encoded := os.Getenv(envKey)
	if encoded == "" {
		encoded = defaultKey
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// CreateMatchToken seals a shipment/trip pair into an opaque token that
// can be handed to a sender without exposing raw identifiers.
func CreateMatchToken(shipmentID string, tripID string) (string, error) {
	plaintext := []byte(shipmentID + ":" + tripID)

	key, err := sealKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

// ParseMatchToken opens a token created by CreateMatchToken and returns
// the shipment ID and trip ID it binds together.
func ParseMatchToken(token string) (string, string, error) {
	key, err := sealKey()
	if err != nil {
		return "", "", err
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", "", err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", "", err
	}

	nonceSize := aesgcm.NonceSize()
	if len(data) < nonceSize {
		return "", "", fmt.Errorf("token too short")
	}
	nonce := data[:nonceSize]
	ciphertext := data[nonceSize:]

	pt, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", "", err
	}

	parts := strings.SplitN(string(pt), ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid token format")
	}

	return parts[0], parts[1], nil
}
