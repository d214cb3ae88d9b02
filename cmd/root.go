// Package cmd implements the xcraft command line
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xcraft/xcraft/cmd/config"
	"github.com/xcraft/xcraft/internals/cmdlog"
	"github.com/xcraft/xcraft/internals/commands"
	"github.com/xcraft/xcraft/internals/globals"
	"github.com/xcraft/xcraft/internals/ownhttp"
)

// set by main
var (
	Version = "dev"
	Commit  string
)

var disableColors bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xcraft",
	Short: "Installs and launches Minecraft",
	Long:  "Install Minecraft versions, import modpacks and launch them against any session server",

	Example: `
  xcraft install 1.20.1
  xcraft import ./my-pack.zip
  xcraft launch 1.20.1 --server play.example.com`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = Version
	if Commit != "" {
		rootCmd.Version += " (" + Commit + ")"
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(commands.Render(err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&disableColors, "no-color", "", false, "disable color output")
	rootCmd.PersistentFlags().String("root", "", "launcher directory (default is $HOME/.xcraft)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "never prompt or draw progress bars")
	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("verboselogging", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("noninteractive", rootCmd.PersistentFlags().Lookup("non-interactive"))

	rootCmd.AddCommand(config.SubCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if disableColors || os.Getenv("CI") != "" {
		cmdlog.DisableColors()
	}

	viper.SetEnvPrefix("XCRAFT")
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	root, err := launcherRoot()
	if err != nil {
		fmt.Println(commands.Render(err))
		os.Exit(1)
	}

	viper.SetConfigFile(filepath.Join(root, "config.toml"))
	viper.SetConfigType("toml")
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		globals.Logger.Warn("Could not read config: " + err.Error())
	}

	if Version != "dev" {
		ownhttp.UserAgent = "xcraft/" + Version + " (+https://github.com/xcraft/xcraft)"
	}
	globals.Setup(globals.Options{
		Root:              root,
		Verbose:           viper.GetBool("verboselogging"),
		RequestsPerSecond: viper.GetFloat64("requestspersecond"),
	})
}

// launcherRoot is set with --root or XCRAFT_ROOT, the working directory in
// portable mode or ~/.xcraft
func launcherRoot() (string, error) {
	if root := viper.GetString("root"); root != "" {
		return filepath.Abs(root)
	}
	if viper.GetBool("portable") {
		return os.Getwd()
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".xcraft"), nil
}

// interactive reports if prompts and progress bars can be used
func interactive() bool {
	if viper.GetBool("noninteractive") {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
