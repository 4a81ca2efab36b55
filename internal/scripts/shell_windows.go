//go:build windows

package scripts

import "os/exec"

// getScriptCommand returns a command running script with cmd.exe
func getScriptCommand(script string) *exec.Cmd {
	// #nosec G204
	return exec.Command("cmd", "/c", script)
}
