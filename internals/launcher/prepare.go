package launcher

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwalton/gchalk"
	"github.com/xcraft/xcraft/internals/downloadmgr"
)

// Prepare downloads whatever the instance is missing to launch
func (l *Launcher) Prepare(ctx context.Context) error {
	instance := l.Instance
	l.printIntro()

	fmt.Fprintln(l.out(), pipeText.Render(gchalk.BgGray("Files")))
	err := ShowProgress(l.out(), !l.NonInteractive, func(updates chan<- downloadmgr.Update) error {
		_, err := l.Provisioner.Provision(ctx, instance.Name, instance.Manifest, updates)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(l.out(), "│")

	l.printOutro()
	return nil
}

var pipeText = lipgloss.NewStyle().
	Border(lipgloss.Border{Left: "│"}, false).
	BorderLeft(true).
	Padding(0, 1)

func (l *Launcher) printIntro() {
	title := lipgloss.NewStyle().
		Border(lipgloss.Border{Left: "┃"}, false).
		BorderLeft(true).
		Background(lipgloss.Color("#FFF")).
		Foreground(lipgloss.Color("#000")).
		Padding(0, 1).
		Render(l.Instance.Name)

	fmt.Fprintln(l.out(), title)
	fmt.Fprintln(l.out(), "│")
	fmt.Fprintln(l.out(), "│ Directory: "+l.Instance.Directory())
	fmt.Fprintf(l.out(), "│ Minecraft %s %s\n", l.Instance.Manifest.MinecraftVersion(), gchalk.Gray(l.Instance.Manifest.MainClass))
	if l.Options != nil && l.Options.Server != nil {
		fmt.Fprintf(l.out(), "│ Server %s:%d %s\n", l.Options.Server.Domain, l.Options.Server.GamePort(), gchalk.Gray(l.Options.Server.Credentials.Username))
	}
	fmt.Fprintln(l.out(), "│")
}

func (l *Launcher) printOutro() {
	java := "java (system)"
	if l.Options != nil && l.Options.Java != "" {
		java = l.Options.Java
	}
	fmt.Fprintln(l.out(), "│ xcraft "+l.Version)
	fmt.Fprintln(l.out(), "│ Java "+java)
}
