package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/jwalton/gchalk"
	"github.com/spf13/cobra"
	"github.com/xcraft/xcraft/internals/commands"
	"github.com/xcraft/xcraft/internals/downloadmgr"
	"github.com/xcraft/xcraft/internals/fabric"
	"github.com/xcraft/xcraft/internals/globals"
	"github.com/xcraft/xcraft/internals/instances"
	"github.com/xcraft/xcraft/internals/launcher"
	"github.com/xcraft/xcraft/internals/pack"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:   "import <archive>",
		Short: "Imports a MultiMC style modpack archive as new instance",
		Long: `Imports a zip containing a mmc-pack.json. Forge and Fabric packs are supported,
the modloader is installed and merged into the Minecraft version of the pack.`,
		Args: cobra.ExactArgs(1),
	}, &importRunner{})

	rootCmd.AddCommand(cmd.Command)
}

type importRunner struct{}

func (i *importRunner) RunE(cmd *cobra.Command, args []string) error {
	archive := args[0]
	if _, err := os.Stat(archive); err != nil {
		return &commands.CliError{Text: fmt.Sprintf("could not open %s", archive), Err: err}
	}

	importer := pack.NewImporter(globals.Layout, globals.HTTPClient, newProvisioner(), globals.Log)
	globals.Logger.Headline("Importing " + archive)

	var instance *instances.Instance
	err := launcher.ShowProgress(os.Stdout, interactive(), func(updates chan<- downloadmgr.Update) error {
		var err error
		instance, err = importer.Import(cmd.Context(), archive, updates)
		return err
	})
	switch {
	case errors.Is(err, pack.ErrComponentMissing):
		return &commands.CliError{
			Text: "This pack does not contain Minecraft",
			Help: "Only packs with a net.minecraft component in their mmc-pack.json can be imported",
			Err:  err,
		}
	case errors.Is(err, pack.ErrPackMalformed):
		return &commands.CliError{
			Text: "This pack can not be read",
			Help: err.Error(),
			Err:  err,
		}
	case errors.Is(err, fabric.ErrNoFabricLoader):
		return &commands.CliError{Text: err.Error(), Err: err}
	case err != nil:
		return friendlyError(err)
	}

	fmt.Printf("Imported as %s. Launch it with `xcraft launch %s`\n", gchalk.Bold(instance.Name), instance.Name)
	return nil
}
