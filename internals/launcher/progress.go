package launcher

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xcraft/xcraft/internals/downloadmgr"
)

// ShowProgress calls run with an update channel and renders what it receives,
// as a progress bar when interactive or as plain lines otherwise. It returns
// the error of run
func ShowProgress(out io.Writer, interactive bool, run func(updates chan<- downloadmgr.Update) error) error {
	updates := make(chan downloadmgr.Update)
	errC := make(chan error, 1)
	go func() {
		errC <- run(updates)
		close(updates)
	}()

	if !interactive {
		printProgress(out, updates)
		return <-errC
	}

	p := tea.NewProgram(newProgressModel(), tea.WithOutput(out), tea.WithInput(nil))
	go func() {
		for u := range updates {
			p.Send(u)
		}
		p.Send(finishedMsg{})
	}()
	if _, err := p.Run(); err != nil {
		// the forwarding loop keeps draining, the result of run still counts
		fmt.Fprintln(out, err)
	}
	return <-errC
}

// printProgress prints a line whenever the label changes or another 10% are done
func printProgress(out io.Writer, updates <-chan downloadmgr.Update) {
	label := ""
	step := -1
	for u := range updates {
		if u.Done() {
			fmt.Fprintln(out, "Done")
			continue
		}
		if u.Label == label && u.Percent/10 == step {
			continue
		}
		label, step = u.Label, u.Percent/10
		fmt.Fprintf(out, "%3d%% %s\n", u.Percent, u.Label)
	}
}

type finishedMsg struct{}

var labelStyle = lipgloss.NewStyle().Width(30).Foreground(lipgloss.Color("245"))

type progressModel struct {
	progress progress.Model
	label    string
	percent  int
}

func newProgressModel() progressModel {
	return progressModel{
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		label:    "Planning downloads",
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-lipgloss.Width(labelStyle.Render(""))-2, 60)
	case downloadmgr.Update:
		m.percent = msg.Percent
		if msg.Done() {
			m.label = "Done"
			return m, tea.Quit
		}
		m.label = msg.Label
	case finishedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	return labelStyle.Render(m.label) + " " + m.progress.ViewAs(float64(m.percent)/100) + "\n"
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
