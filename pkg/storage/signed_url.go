package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// MaterialSigner creates and validates download tokens for material files.
// Tokens bind the requesting user, the file name, and the material code.
// They carry no expiry: a link mailed to a teacher stays valid.
type MaterialSigner struct {
	secret []byte
}

// NewMaterialSigner constructs a signer with the provided secret.
func NewMaterialSigner(secret string) *MaterialSigner {
	return &MaterialSigner{secret: []byte(secret)}
}

// Generate returns a signed token referencing the user, file and code.
func (s *MaterialSigner) Generate(userID, filename, code string) (string, error) {
	if userID == "" || filename == "" || code == "" {
		return "", fmt.Errorf("userID, filename and code required")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("signing secret missing")
	}
	encodedFile := base64.RawURLEncoding.EncodeToString([]byte(filename))
	encodedCode := base64.RawURLEncoding.EncodeToString([]byte(code))
	payload := fmt.Sprintf("%s|%s|%s", userID, encodedFile, encodedCode)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return strings.Join([]string{userID, encodedFile, encodedCode, signature}, "."), nil
}

// Parse validates a token and returns the embedded metadata.
func (s *MaterialSigner) Parse(token string) (userID, filename, code string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", "", fmt.Errorf("invalid token format")
	}
	userID = parts[0]
	encodedFile := parts[1]
	encodedCode := parts[2]
	signature := parts[3]

	rawFile, err := base64.RawURLEncoding.DecodeString(encodedFile)
	if err != nil {
		return "", "", "", fmt.Errorf("decode filename: %w", err)
	}
	rawCode, err := base64.RawURLEncoding.DecodeString(encodedCode)
	if err != nil {
		return "", "", "", fmt.Errorf("decode code: %w", err)
	}

	payload := fmt.Sprintf("%s|%s|%s", userID, encodedFile, encodedCode)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", "", "", fmt.Errorf("invalid token signature")
	}
	return userID, string(rawFile), string(rawCode), nil
}
