package launcher

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwalton/gchalk"
	"github.com/xcraft/xcraft/internals/commands"
)

// Run will launch the instance and block until minecraft is stopped.
// Cancelling ctx stops minecraft
func (l *Launcher) Run(ctx context.Context) error {
	fmt.Fprintln(l.out(), "│")
	fmt.Fprintln(l.out(),
		lipgloss.JoinHorizontal(
			0.5,
			gchalk.Hex("#7a563b")("│"+"\n"+"┕"),
			commands.StyleGrass.Render(commands.Emoji("⛏  ")+"Launching Minecraft"),
		),
	)

	cmd, err := l.Instance.BuildLaunchCmd(l.Options)
	if err != nil {
		return err
	}

	// Pass input to minecraft.
	cmd.Stdin = os.Stdin
	l.Cmd = cmd

	runtime.GC()
	if err := cmd.Start(); err != nil {
		return err
	}

	waitC := make(chan error, 1)
	go func() { waitC <- cmd.Wait() }()

	select {
	case err = <-waitC:
	case <-ctx.Done():
		if runtime.GOOS == "windows" {
			cmd.Process.Kill()
		} else {
			cmd.Process.Signal(os.Interrupt)
		}
		err = <-waitC
	}

	// minecraft returns 130 when it was interrupted
	code := cmd.ProcessState.ExitCode()
	if code == 130 || code == 0 {
		fmt.Fprintf(l.out(), "\nMinecraft was stopped normally (exit code %d).\n", code)
		return nil
	}

	return l.handleCrash(code, err)
}
