package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/otabekh/minbar/internal/constants"
)

// Sanitize strips characters unsafe for filesystem paths and trims
// trailing dots and spaces.
func Sanitize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(constants.InvalidPathChars, r) {
			return -1
		}
		return r
	}, s)

	return strings.TrimRight(mapped, ". ")
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, constants.DirPermissions)
}

// SafeJoin joins an archive entry name under root, refusing names
// that would escape it.
func SafeJoin(root, name string) (string, bool) {
	cleaned := filepath.Clean(filepath.Join(root, filepath.Base(name)))
	if !strings.HasPrefix(cleaned, filepath.Clean(root)+string(os.PathSeparator)) {
		return "", false
	}
	return cleaned, true
}
