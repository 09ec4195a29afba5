package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"CodeVault/internal/model"

	"golang.org/x/crypto/hkdf"
)

// KeyLen — длина ключа слоя в байтах.
const KeyLen = 32

// Key — зерно ключевого потока, привязанное к слою.
type Key [KeyLen]byte

// DeriveKey выводит ключ слоя из секрета (PIN), класса и id слоя.
// Дайджест секрета — входной материал HKDF, id слоя — соль, класс — info,
// поэтому у двух слоёв с одним PIN ключи разные, а private/hidden не пересекаются.
func DeriveKey(secret string, class model.Class, layerID string) (Key, error) {
	return derive(secret, layerID, "layer/"+class.String())
}

// deriveMACKey выводит отдельный ключ для тега целостности.
func deriveMACKey(secret string, class model.Class, layerID string) (Key, error) {
	return derive(secret, layerID, "layer-mac/"+class.String())
}

func derive(secret, salt, info string) (Key, error) {
	var k Key
	digest := sha256.Sum256([]byte(secret))
	h := hkdf.New(sha256.New, digest[:], []byte(salt), []byte(info))
	if _, err := io.ReadFull(h, k[:]); err != nil {
		return Key{}, err
	}
	return k, nil
}

// Transform применяет XOR с ключевым потоком, полученным продолжением дайджеста ключа
// блоками SHA-256(key || counter). Функция обратна сама себе и никогда не падает.
func Transform(data []byte, key Key) []byte {
	out := make([]byte, len(data))
	var (
		block   [sha256.Size]byte
		counter uint32
		buf     [KeyLen + 4]byte
	)
	copy(buf[:KeyLen], key[:])
	for i := range data {
		if i%sha256.Size == 0 {
			binary.BigEndian.PutUint32(buf[KeyLen:], counter)
			block = sha256.Sum256(buf[:])
			counter++
		}
		out[i] = data[i] ^ block[i%sha256.Size]
	}
	return out
}
