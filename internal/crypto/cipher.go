package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"CodeVault/internal/model"
)

// tagLen — длина усечённого HMAC-тега (в байтах).
const tagLen = 16

var (
	// ErrAuthenticationFailed — тег не совпал: неверный PIN или изменённый шифртекст.
	ErrAuthenticationFailed = errors.New("layer authentication failed")
	// ErrMalformedCiphertext — шифртекст не декодируется или слишком короткий.
	ErrMalformedCiphertext = errors.New("malformed layer ciphertext")
	// ErrUnsupportedVersion — для версии формата нет шифра.
	ErrUnsupportedVersion = errors.New("unsupported code version")
)

// Cipher шифрует и расшифровывает payload слоя в текстовом виде, пригодном для кода.
type Cipher interface {
	Encrypt(plain, secret string, class model.Class, layerID string) (string, error)
	Decrypt(ciphertext, secret string, class model.Class, layerID string) (string, error)
}

// ForVersion возвращает шифр для версии формата.
func ForVersion(v int) (Cipher, error) {
	switch v {
	case model.VersionLegacy:
		return Legacy{}, nil
	case model.VersionSealed:
		return Sealed{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
}

// Legacy — base64(XOR). Проверки целостности нет: неверный PIN даёт мусор, а не ошибку.
type Legacy struct{}

// Encrypt шифрует plain ключом слоя.
func (Legacy) Encrypt(plain, secret string, class model.Class, layerID string) (string, error) {
	key, err := DeriveKey(secret, class, layerID)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(Transform([]byte(plain), key)), nil
}

// Decrypt ошибается только на невалидном base64.
func (Legacy) Decrypt(ciphertext, secret string, class model.Class, layerID string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	key, err := DeriveKey(secret, class, layerID)
	if err != nil {
		return "", err
	}
	return string(Transform(raw, key)), nil
}

// Sealed — base64(tag || XOR), tag = HMAC-SHA256(macKey, class|id|body)[:16].
type Sealed struct{}

// Encrypt шифрует plain и добавляет тег целостности.
func (Sealed) Encrypt(plain, secret string, class model.Class, layerID string) (string, error) {
	key, err := DeriveKey(secret, class, layerID)
	if err != nil {
		return "", err
	}
	macKey, err := deriveMACKey(secret, class, layerID)
	if err != nil {
		return "", err
	}
	body := Transform([]byte(plain), key)
	out := make([]byte, 0, tagLen+len(body))
	out = append(out, sealTag(macKey, class, layerID, body)...)
	out = append(out, body...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt проверяет тег до расшифровки.
func (Sealed) Decrypt(ciphertext, secret string, class model.Class, layerID string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	if len(raw) < tagLen {
		return "", fmt.Errorf("%w: %d bytes", ErrMalformedCiphertext, len(raw))
	}
	macKey, err := deriveMACKey(secret, class, layerID)
	if err != nil {
		return "", err
	}
	tag, body := raw[:tagLen], raw[tagLen:]
	if !hmac.Equal(tag, sealTag(macKey, class, layerID, body)) {
		return "", ErrAuthenticationFailed
	}
	key, err := DeriveKey(secret, class, layerID)
	if err != nil {
		return "", err
	}
	return string(Transform(body, key)), nil
}

func sealTag(macKey Key, class model.Class, layerID string, body []byte) []byte {
	mac := hmac.New(sha256.New, macKey[:])
	mac.Write([]byte(class.String()))
	mac.Write([]byte{0})
	mac.Write([]byte(layerID))
	mac.Write([]byte{0})
	mac.Write(body)
	return mac.Sum(nil)[:tagLen]
}
