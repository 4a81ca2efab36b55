//go:build !windows

package scripts

import "path/filepath"

func matchName(pattern, name string) (bool, error) {
	return filepath.Match(pattern, name)
}
