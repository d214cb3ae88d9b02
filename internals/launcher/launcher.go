// Package launcher prepares and launches instances with CLI output
package launcher

import (
	"io"
	"os"
	"os/exec"

	"github.com/xcraft/xcraft/internals/instances"
)

// Launcher can launch instances with CLI output
type Launcher struct {
	// Instance is the instance to be launched
	Instance *instances.Instance
	// Provisioner downloads whatever is missing before launch
	Provisioner *instances.Provisioner
	// Options are passed to BuildLaunchCmd
	Options *instances.LaunchOptions

	// Version is the version number of xcraft
	Version string

	// NonInteractive determines if fancy progress bars should be displayed
	NonInteractive bool

	// Out receives the intro and progress output. Defaults to stdout
	Out io.Writer

	// Cmd is the started minecraft process. It is set by Run
	Cmd *exec.Cmd
}

func (l *Launcher) out() io.Writer {
	if l.Out == nil {
		return os.Stdout
	}
	return l.Out
}
