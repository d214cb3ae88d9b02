package cmd

import (
	"fmt"
	"strconv"

	"github.com/jwalton/gchalk"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/xcraft/xcraft/internals/commands"
	"github.com/xcraft/xcraft/internals/globals"
	"github.com/xcraft/xcraft/internals/servers"
	"github.com/xcraft/xcraft/internals/utils"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Manage server profiles used to launch against custom session servers",
}

func init() {
	list := commands.New(&cobra.Command{
		Use:     "list",
		Short:   "Lists saved server profiles",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
	}, &serversListRunner{})

	addRunner := &serversAddRunner{profile: &servers.Profile{}}
	add := commands.New(&cobra.Command{
		Use:   "add <domain>",
		Short: "Saves a server profile",
		Args:  cobra.ExactArgs(1),
	}, addRunner)
	add.Flags().IntVar(&addRunner.profile.Port, "port", servers.DefaultPort, "game port")
	add.Flags().IntVar(&addRunner.profile.SessionServerPort, "session-port", 0, "port of the session server")
	add.Flags().StringVarP(&addRunner.profile.Credentials.Username, "user", "u", "", "username")
	add.Flags().StringVar(&addRunner.profile.Credentials.UUID, "uuid", "", "player uuid (derived from the username if empty)")

	serversCmd.AddCommand(list.Command, add.Command)
	rootCmd.AddCommand(serversCmd)
}

type serversListRunner struct{}

func (s *serversListRunner) RunE(cmd *cobra.Command, args []string) error {
	profiles, err := servers.List(globals.Layout.ServersDir())
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		globals.Logger.Info("No server profiles yet. Add one with `xcraft servers add <domain>`")
		return nil
	}
	for _, p := range profiles {
		fmt.Printf("  %-32s %s %s\n", fmt.Sprintf("%s:%d", p.Domain, p.GamePort()), p.Credentials.Username, gchalk.Gray("session port "+strconv.Itoa(p.SessionServerPort)))
	}
	return nil
}

type serversAddRunner struct {
	profile *servers.Profile
}

func (s *serversAddRunner) RunE(cmd *cobra.Command, args []string) error {
	p := s.profile
	p.Domain = args[0]

	if interactive() {
		if p.Credentials.Username == "" {
			p.Credentials.Username = utils.StringPrompt(&promptui.Prompt{Label: "Username"})
		}
		if p.SessionServerPort == 0 {
			port := utils.StringPrompt(&promptui.Prompt{Label: "Session server port", Validate: validatePort})
			p.SessionServerPort, _ = strconv.Atoi(port)
		}
		p.Credentials.Password = utils.StringPrompt(&promptui.Prompt{Label: "Password", Mask: '*'})
	}
	if err := p.Validate(); err != nil {
		return &commands.CliError{Text: err.Error(), Help: "Set --user and --session-port"}
	}

	path, err := servers.Save(globals.Layout.ServersDir(), p)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", gchalk.Bold(path))
	return nil
}

func validatePort(s string) error {
	port, err := strconv.Atoi(s)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port")
	}
	return nil
}
