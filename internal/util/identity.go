package util

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// FileID derives a protocol's identity from its bytes. Re-uploading the
// same scan under a different filename lands on the same protocol row.
func FileID(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
