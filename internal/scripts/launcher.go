package scripts

// Launcher starts a script without waiting for it to finish.
type Launcher interface {
	Launch(path string) error
}

// ShellLauncher runs scripts through the platform command interpreter in a
// hidden, detached child process. Standard streams go to the null device.
type ShellLauncher struct{}

func (ShellLauncher) Launch(path string) error {
	cmd := getScriptCommand(path)
	configureSysProcAttr(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	// reap in the background; the exit status is not reported
	go func() { _ = cmd.Wait() }()
	return nil
}
