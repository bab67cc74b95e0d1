// Package fingerprint computes content fingerprints for local asset files.
// The digest is the sole mechanism that prevents redundant uploads, so a
// collision-resistant hash is required.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/rbxsync/rbxsync/pkg/errors"
)

// File returns the hex-encoded SHA-256 digest of the file's contents.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.WrapResource("read", "asset", path, errors.ErrAssetNotFound)
		}
		return "", errors.WrapIO("read", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.WrapIO("read", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Bytes returns the hex-encoded SHA-256 digest of raw bytes.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
