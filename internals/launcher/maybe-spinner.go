package launcher

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// MaybeSpinner is a spinner that can also just log text
type MaybeSpinner struct {
	Spin    bool
	Spinner *spinner.Spinner
	Msg     string
	out     io.Writer
}

// Start might start the spinner
func (m *MaybeSpinner) Start() {
	if m.Spin {
		m.Spinner.Start()
	} else if m.Msg != "" {
		fmt.Fprintln(m.out, m.Msg)
	}
}

// Stop will stop the spinner
func (m *MaybeSpinner) Stop() {
	if m.Spin {
		m.Spinner.Stop()
	}
}

// Update will update the spinner text
func (m *MaybeSpinner) Update(t string) {
	m.Spinner.Suffix = " " + t

	if !m.Spin {
		fmt.Fprintln(m.out, t)
	}
}

// NewMaybeSpinner will return a new MaybeSpinner. msg is printed once
// when spinning is disabled
func NewMaybeSpinner(spin bool, msg string) *MaybeSpinner {
	s := &MaybeSpinner{
		Spin:    spin,
		Spinner: spinner.New(spinner.CharSets[9], 300*time.Millisecond, spinner.WithWriter(os.Stderr)),
		Msg:     msg,
		out:     os.Stdout,
	}
	s.Spinner.Prefix = " "
	s.Spinner.Suffix = " " + msg
	return s
}
