// Package commands wraps cobra commands so errors are rendered as error boxes
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Command is a cobra command that runs a Runner
type Command struct {
	*cobra.Command
	runner Runner
}

// Runner runs a command
type Runner interface {
	RunE(cmd *cobra.Command, args []string) error
}

// New wraps cmd. Errors returned by run are printed and exit the process with 1
func New(cmd *cobra.Command, run Runner) *Command {
	build := &Command{
		cmd,
		run,
	}
	build.Command.Run = func(cmd *cobra.Command, args []string) {
		err := run.RunE(cmd, args)
		if err != nil {
			fmt.Println(Render(err))
			os.Exit(1)
		}
	}

	return build
}

// Render returns the error box for err
func Render(err error) string {
	var asCliErr *CliError
	if errors.As(err, &asCliErr) {
		return asCliErr.RichError() + "\n"
	}
	return ErrorBox(err.Error(), "")
}
