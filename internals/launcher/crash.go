package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jwalton/gchalk"
	"github.com/xcraft/xcraft/internals/commands"
	"github.com/xcraft/xcraft/internals/logparser"
)

// handleCrash prints some debug info and the last errors of the game log
func (l *Launcher) handleCrash(code int, err error) error {
	out := l.out()
	manifest := l.Instance.Manifest

	fmt.Fprintln(out, "--------------------")
	fmt.Fprintln(out, "Minecraft crashed :(")
	fmt.Fprintln(out, "Here is some debug info")
	fmt.Fprintln(out, "[system]")
	fmt.Fprintln(out, "  OS: "+runtime.GOOS)
	fmt.Fprintf(out, "  CPUs: %d\n", runtime.NumCPU())
	fmt.Fprintln(out, "[instance]")
	fmt.Fprintln(out, "  name: "+l.Instance.Name)
	fmt.Fprintln(out, "  minecraft: "+manifest.MinecraftVersion())
	fmt.Fprintln(out, "  main class: "+manifest.MainClass)
	fmt.Fprintf(out, "  exit code: %d\n", code)

	logFile := filepath.Join(l.Instance.McDir(), "logs", "latest.log")
	if f, openErr := os.Open(logFile); openErr == nil {
		defer f.Close()
		if lines, _ := logparser.LastErrors(f, 3); len(lines) != 0 {
			fmt.Fprintln(out, "[last errors]")
			for _, line := range lines {
				fmt.Fprintln(out, "  "+gchalk.Red(line.String()))
			}
		}
	}

	return &commands.CliError{
		Text: fmt.Sprintf("Minecraft crashed (exit code %d)", code),
		Help: "Crash reports are saved in " + filepath.Join(l.Instance.McDir(), "crash-reports"),
		Err:  err,
	}
}
