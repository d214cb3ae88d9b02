package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jwalton/gchalk"
	"github.com/manifoldco/promptui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/xcraft/xcraft/internals/catalog"
	"github.com/xcraft/xcraft/internals/commands"
	"github.com/xcraft/xcraft/internals/downloadmgr"
	"github.com/xcraft/xcraft/internals/globals"
	"github.com/xcraft/xcraft/internals/launcher"
	"github.com/xcraft/xcraft/internals/utils"
)

func init() {
	runner := &installRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "install [version]",
		Short: "Installs a Minecraft version as new instance",
		Long: `Downloads the client, libraries and assets of a Minecraft version.
Without a version you can pick one (or the latest release is used when not interactive).`,
		Args: cobra.MaximumNArgs(1),
	}, runner)

	cmd.Flags().StringVar(&runner.name, "name", "", "instance name (default is the version)")
	cmd.Flags().BoolVar(&runner.latestSnapshot, "snapshot", false, "install the latest snapshot")

	rootCmd.AddCommand(cmd.Command)
}

type installRunner struct {
	name           string
	latestSnapshot bool
}

func (i *installRunner) RunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := fetchCatalog(ctx)
	if err != nil {
		return err
	}

	version, err := i.pick(c, args)
	if err != nil {
		return friendlyError(err)
	}

	name := i.name
	if name == "" {
		name = version.ID
	}
	if exists, _ := afero.DirExists(afero.NewOsFs(), globals.Layout.InstanceDir(name)); exists {
		return &commands.CliError{
			Text:        fmt.Sprintf("instance %q already exists", name),
			Suggestions: []string{"Use --name to pick another name", "Launch it with `xcraft launch " + name + "`"},
		}
	}

	desc, err := catalog.New(globals.HTTPClient).FetchDescriptor(ctx, version)
	if err != nil {
		return friendlyError(err)
	}

	globals.Logger.Headline(fmt.Sprintf("Installing Minecraft %s (%s)", version.ID, version.Type))
	provisioner := newProvisioner()
	err = launcher.ShowProgress(os.Stdout, interactive(), func(updates chan<- downloadmgr.Update) error {
		_, err := provisioner.Install(ctx, name, version, desc, updates)
		return err
	})
	if err != nil {
		return friendlyError(err)
	}

	size := ""
	if client := desc.ClientDownload(); client != nil && client.Size > 0 {
		size = gchalk.Gray(" (client " + humanize.Bytes(uint64(client.Size)) + ")")
	}
	fmt.Printf("Installed %s%s. Launch it with `xcraft launch %s`\n", gchalk.Bold(name), size, name)
	return nil
}

func (i *installRunner) pick(c *catalog.Catalog, args []string) (*catalog.Version, error) {
	if len(args) == 1 {
		return c.Find(args[0])
	}
	if i.latestSnapshot || !interactive() {
		return c.LatestVersion(i.latestSnapshot)
	}

	versions := filteredVersions(c)
	items := make([]string, 0, len(versions))
	for _, v := range versions {
		items = append(items, v.ID)
	}
	id := utils.SelectPrompt(&promptui.Select{
		Label: "Select a version",
		Items: items,
		Size:  10,
	})
	return c.Find(id)
}
