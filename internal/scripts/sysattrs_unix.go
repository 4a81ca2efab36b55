//go:build !windows

package scripts

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr starts the child in a new session so it is detached
// from the controlling terminal and survives vrhook exiting.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
