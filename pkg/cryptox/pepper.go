package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
)

// LoadOrGeneratePepper reads the pepper from file, generating and persisting a
// new one when the file does not exist yet. The pepper never rotates in place;
// losing it invalidates every stored password hash.
func LoadOrGeneratePepper(file string) (string, error) {
	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(file); os.IsNotExist(err) {
		buf := make([]byte, hashKeyLength)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		pepper := base64.RawURLEncoding.EncodeToString(buf)
		if err := os.WriteFile(file, []byte(pepper), 0600); err != nil {
			return "", err
		}
		return pepper, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
