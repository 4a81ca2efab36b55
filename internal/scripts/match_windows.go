//go:build windows

package scripts

import (
	"path/filepath"
	"strings"
)

// matchName folds case like the Windows file system does.
func matchName(pattern, name string) (bool, error) {
	return filepath.Match(strings.ToLower(pattern), strings.ToLower(name))
}
