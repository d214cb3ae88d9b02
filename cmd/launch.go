package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xcraft/xcraft/internals/commands"
	"github.com/xcraft/xcraft/internals/globals"
	"github.com/xcraft/xcraft/internals/instances"
	"github.com/xcraft/xcraft/internals/launcher"
	"github.com/xcraft/xcraft/internals/servers"
)

func init() {
	runner := &launchRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "launch <instance>",
		Short: "Launches an instance",
		Long: `Launches an instance. Missing files are downloaded first.
With --server the game uses a saved server profile for authentication and joins that server.`,
		Aliases: []string{"run", "start"},
		Args:    cobra.ExactArgs(1),
	}, runner)

	cmd.Flags().StringVarP(&runner.server, "server", "s", "", "domain of a saved server profile to join")
	cmd.Flags().StringVarP(&runner.username, "user", "u", "", "username of the server profile (if there are multiple)")
	cmd.Flags().StringVar(&runner.player, "name", instances.DefaultPlayerName, "player name when launching without server profile")
	cmd.Flags().Int("ram", 0, "amount of RAM in MiB to use")
	cmd.Flags().String("java", "", "java binary to use")
	cmd.Flags().BoolVar(&runner.skipPrepare, "skip-download", false, "do not check for missing files")
	viper.BindPFlag("ramamount", cmd.Flags().Lookup("ram"))
	viper.BindPFlag("javapath", cmd.Flags().Lookup("java"))

	rootCmd.AddCommand(cmd.Command)
}

type launchRunner struct {
	server      string
	username    string
	player      string
	skipPrepare bool
}

func (l *launchRunner) RunE(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instance, err := instances.Open(afero.NewOsFs(), globals.Layout, args[0])
	if err != nil {
		return friendlyError(err)
	}

	opts := &instances.LaunchOptions{
		Java:            viper.GetString("javapath"),
		RamMiB:          viper.GetInt("ramamount"),
		PlayerName:      l.player,
		AllowHTTP:       viper.GetBool("allowhttp"),
		LauncherName:    "xcraft",
		LauncherVersion: Version,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Log:             globals.Log,
	}
	if l.server != "" {
		profile, err := servers.Find(globals.Layout.ServersDir(), l.username, l.server)
		if err != nil {
			return &commands.CliError{
				Text:        err.Error(),
				Suggestions: []string{"Add one with `xcraft servers add " + l.server + "`"},
				Err:         err,
			}
		}
		opts.Server = profile
	}

	cliLauncher := &launcher.Launcher{
		Instance:       instance,
		Provisioner:    newProvisioner(),
		Options:        opts,
		Version:        Version,
		NonInteractive: !interactive(),
	}

	if !l.skipPrepare {
		if err := cliLauncher.Prepare(ctx); err != nil {
			return friendlyError(err)
		}
	}
	return cliLauncher.Run(ctx)
}
