package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/xcraft/xcraft/internals/commands"
	"github.com/xcraft/xcraft/internals/globals"
	"github.com/xcraft/xcraft/internals/instances"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:     "instances",
		Short:   "Lists all installed instances",
		Aliases: []string{"ls", "list"},
		Args:    cobra.NoArgs,
	}, &instancesRunner{})

	rootCmd.AddCommand(cmd.Command)
}

type instancesRunner struct{}

func (i *instancesRunner) RunE(cmd *cobra.Command, args []string) error {
	list, err := instances.List(afero.NewOsFs(), globals.Layout, globals.Log)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		globals.Logger.Info("No instances yet. Create one with `xcraft install` or `xcraft import`")
		return nil
	}
	for _, instance := range list {
		fmt.Println(instance.Desc())
	}
	return nil
}
