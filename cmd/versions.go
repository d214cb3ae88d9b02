package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jwalton/gchalk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xcraft/xcraft/internals/catalog"
	"github.com/xcraft/xcraft/internals/commands"
)

func init() {
	runner := &versionsRunner{}
	cmd := commands.New(&cobra.Command{
		Use:     "versions",
		Short:   "Lists the Minecraft versions that can be installed",
		Aliases: []string{"available"},
		Args:    cobra.NoArgs,
	}, runner)

	cmd.Flags().Bool("snapshots", false, "include snapshots")
	cmd.Flags().Bool("beta", false, "include old_beta versions")
	cmd.Flags().Bool("alpha", false, "include old_alpha versions")
	cmd.Flags().IntVarP(&runner.limit, "limit", "n", 20, "number of versions to list, 0 lists all")
	viper.BindPFlag("showsnapshots", cmd.Flags().Lookup("snapshots"))
	viper.BindPFlag("showbeta", cmd.Flags().Lookup("beta"))
	viper.BindPFlag("showalpha", cmd.Flags().Lookup("alpha"))

	rootCmd.AddCommand(cmd.Command)
}

type versionsRunner struct {
	limit int
}

func (v *versionsRunner) RunE(cmd *cobra.Command, args []string) error {
	c, err := fetchCatalog(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Latest release: %s  snapshot: %s\n\n", gchalk.Bold(c.Latest.Release), c.Latest.Snapshot)

	versions := filteredVersions(c)
	if v.limit > 0 && len(versions) > v.limit {
		versions = versions[:v.limit]
	}
	for _, version := range versions {
		fmt.Printf("  %-24s %-10s %s\n", version.ID, typeLabel(version.Type), gchalk.Gray(released(version)))
	}
	return nil
}

func filteredVersions(c *catalog.Catalog) []catalog.Version {
	return c.Filter(
		viper.GetBool("showsnapshots"),
		viper.GetBool("showbeta"),
		viper.GetBool("showalpha"),
	)
}

func typeLabel(t string) string {
	if t == catalog.TypeRelease {
		return gchalk.Green(t)
	}
	return gchalk.Yellow(t)
}

func released(v catalog.Version) string {
	at, err := time.Parse(time.RFC3339, v.ReleaseTime)
	if err != nil {
		return ""
	}
	return humanize.Time(at)
}
