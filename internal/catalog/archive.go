package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
)

// ResponseArchive keeps raw CMR responses on disk, content addressed, so a
// run can be replayed with `cmrstac build`.
type ResponseArchive struct {
	dir string
}

func NewResponseArchive(dir string) *ResponseArchive {
	return &ResponseArchive{dir: dir}
}

// Store writes raw under its sha256 and returns the path. An empty dir
// disables archiving.
func (a *ResponseArchive) Store(raw []byte) (string, error) {
	if a == nil || a.dir == "" {
		return "", nil
	}

	hashBytes := sha256.Sum256(raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", err
	}

	rawPath := filepath.Join(a.dir, hash+".json")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
			return "", err
		}
	}
	return rawPath, nil
}
