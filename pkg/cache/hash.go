package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the JSON encoding of v. encoding/json sorts map keys, so
// equal values hash alike.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}

// typedKey is "<keyType>:" followed by the hash of parts.
func typedKey(keyType string, parts ...any) string {
	h, err := HashJSON(parts)
	if err != nil {
		// Key options are plain structs of strings and numbers.
		panic("cache: unhashable key parts: " + err.Error())
	}
	return keyType + ":" + h
}
