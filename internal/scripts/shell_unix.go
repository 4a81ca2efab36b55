//go:build !windows

package scripts

import "os/exec"

// getScriptCommand returns a command running script with the POSIX shell
func getScriptCommand(script string) *exec.Cmd {
	// #nosec G204
	return exec.Command("/bin/sh", script)
}
