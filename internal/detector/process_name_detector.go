package detector

import (
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// ProcessNameDetector reports a process as alive when any running process
// has one of the given executable names. Names are compared without regard
// to case so the same list serves Windows and Unix hosts.
type ProcessNameDetector struct {
	Names []string
}

func (d ProcessNameDetector) Alive() (bool, error) {
	if len(d.Names) == 0 {
		return false, nil
	}
	procs, err := gopsproc.Processes()
	if err != nil {
		return false, err
	}
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			// exited between listing and inspection, or not ours to read
			continue
		}
		if d.matches(name) {
			return true, nil
		}
	}
	return false, nil
}

func (d ProcessNameDetector) matches(name string) bool {
	for _, n := range d.Names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func (d ProcessNameDetector) Describe() string { return "process:" + strings.Join(d.Names, ",") }
